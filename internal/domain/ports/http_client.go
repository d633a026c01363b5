package ports

import (
	"net/http"
)

// HTTPClient defines the interface for making HTTP requests. It lets tests
// mock transport calls and hosts swap the underlying client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
