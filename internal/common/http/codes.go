package http

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)
