package request

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	HostName string `json:"hostName"`
}
