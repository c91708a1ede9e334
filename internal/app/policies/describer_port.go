package policies

import "context"

// ListingDescription is what the describer service generates for a draft
// listing from its title and photos.
type ListingDescription struct {
	Description string
	Tags        []string
}

// DescriberPort abstracts the AI description service. Optional: a nil port
// means sellers write their own descriptions.
type DescriberPort interface {
	Describe(ctx context.Context, title, category, condition string, imageURLs []string) (ListingDescription, error)
}
