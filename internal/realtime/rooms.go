package realtime

import "sync"

// Rooms maps each conversation to the connections currently subscribed to it.
// Membership is ephemeral and derived; nothing here is persisted. Join does
// not re-verify participant membership: the REST layer only hands out
// conversation ids the caller is authorized for.
type Rooms struct {
	mu     sync.RWMutex
	byConv map[string]map[*Conn]struct{}
	byConn map[*Conn]map[string]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		byConv: make(map[string]map[*Conn]struct{}),
		byConn: make(map[*Conn]map[string]struct{}),
	}
}

func (r *Rooms) Join(conversationID string, conn *Conn) {
	r.mu.Lock()
	room := r.byConv[conversationID]
	if room == nil {
		room = make(map[*Conn]struct{})
		r.byConv[conversationID] = room
	}
	room[conn] = struct{}{}

	memberships := r.byConn[conn]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.byConn[conn] = memberships
	}
	memberships[conversationID] = struct{}{}
	r.mu.Unlock()
}

func (r *Rooms) Leave(conversationID string, conn *Conn) {
	r.mu.Lock()
	r.leaveLocked(conversationID, conn)
	r.mu.Unlock()
}

// Drop removes the connection from every room it joined.
func (r *Rooms) Drop(conn *Conn) {
	r.mu.Lock()
	for conversationID := range r.byConn[conn] {
		r.leaveLocked(conversationID, conn)
	}
	r.mu.Unlock()
}

// Contains reports whether conn is currently subscribed to the conversation.
func (r *Rooms) Contains(conversationID string, conn *Conn) bool {
	r.mu.RLock()
	_, ok := r.byConv[conversationID][conn]
	r.mu.RUnlock()
	return ok
}

// Broadcast delivers payload to every subscriber of the conversation,
// including the sender's own connection if subscribed.
func (r *Rooms) Broadcast(conversationID string, payload []byte) int {
	return r.broadcast(conversationID, payload, nil)
}

// BroadcastExcept delivers payload to every subscriber but the given connection.
func (r *Rooms) BroadcastExcept(conversationID string, payload []byte, except *Conn) int {
	return r.broadcast(conversationID, payload, except)
}

func (r *Rooms) broadcast(conversationID string, payload []byte, except *Conn) int {
	r.mu.RLock()
	room := r.byConv[conversationID]
	conns := make([]*Conn, 0, len(room))
	for conn := range room {
		if conn == except {
			continue
		}
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

func (r *Rooms) leaveLocked(conversationID string, conn *Conn) {
	room := r.byConv[conversationID]
	if room == nil {
		return
	}
	delete(room, conn)
	if len(room) == 0 {
		delete(r.byConv, conversationID)
	}
	if memberships, ok := r.byConn[conn]; ok {
		delete(memberships, conversationID)
		if len(memberships) == 0 {
			delete(r.byConn, conn)
		}
	}
}
