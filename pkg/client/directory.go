package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DirectoryClient talks to the hospitals/doctors directory service. The
// scheduling core only needs existence and affiliation checks from it.
type DirectoryClient struct {
	httpClient *HttpClient
}

func NewDirectoryClient(baseURL string) *DirectoryClient {
	return &DirectoryClient{
		httpClient: NewHttpClient(baseURL),
	}
}

// WaitForHealthy blocks until the directory's health endpoint answers or
// maxWait elapses.
func (c *DirectoryClient) WaitForHealthy(maxWait time.Duration) error {
	return c.httpClient.WaitForHealthy(maxWait)
}

// IsDoctorAffiliated reports whether the doctor practices at the hospital.
func (c *DirectoryClient) IsDoctorAffiliated(ctx context.Context, doctorID, hospitalID string) (bool, error) {
	path := fmt.Sprintf("/api/v1/doctors/%s/affiliations/%s",
		url.PathEscape(doctorID), url.PathEscape(hospitalID))

	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return false, fmt.Errorf("directory affiliation check failed: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("directory returned unexpected status %d", resp.StatusCode)
	}
}

// HospitalExists reports whether the hospital is known to the directory.
func (c *DirectoryClient) HospitalExists(ctx context.Context, hospitalID string) (bool, error) {
	path := "/api/v1/hospitals/" + url.PathEscape(hospitalID)

	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return false, fmt.Errorf("directory hospital lookup failed: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("directory returned unexpected status %d", resp.StatusCode)
	}
}
