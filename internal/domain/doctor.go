package domain

// Doctor is a server-owned directory record. The client never mutates
// doctors; identity is the server-assigned ID.
type Doctor struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Speciality string `json:"speciality"`
	Department string `json:"department"`
}
