package response

type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// DeleteResponse is returned after a successful delete.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// HealthResponse reports store reachability.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: "error",
		Error:  msg,
	}
}

var Deleted = DeleteResponse{Success: true}
