package nettester

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/yllada/vpn-access/common"
)

// Client issues upload/download measurements against a test endpoint.
type Client struct {
	// BaseURL is the test server root, e.g. "http://203.0.113.7:443".
	BaseURL string
	// HTTPClient is the client used for requests; http.DefaultClient
	// when nil.
	HTTPClient *http.Client
}

// NewClient creates a nettester client for the given test server.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: common.DefaultTestTimeout},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Upload moves length bytes to the server over the given number of
// concurrent connections, each tasked with an equal share. Connection
// failures are logged and do not abort the measurement.
func (c *Client) Upload(ctx context.Context, length int64, connections int) *Speedometer {
	if connections < 1 {
		connections = 1
	}
	common.LogInfo("nettester: uploading %s over %d connection(s)", FormatBytes(length), connections)

	speedometer := NewSpeedometer("nettester up")
	var wg sync.WaitGroup
	for i := 0; i < connections; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.upload(ctx, length/int64(connections), speedometer); err != nil {
				common.LogWarn("nettester: upload connection failed: %v", err)
			}
		}()
	}
	wg.Wait()
	speedometer.Report()
	return speedometer
}

// Download moves length bytes from the server over the given number of
// concurrent connections, each tasked with an equal share. Connection
// failures are logged and do not abort the measurement.
func (c *Client) Download(ctx context.Context, length int64, connections int) *Speedometer {
	if connections < 1 {
		connections = 1
	}
	common.LogInfo("nettester: downloading %s over %d connection(s)", FormatBytes(length), connections)

	speedometer := NewSpeedometer("nettester down")
	var wg sync.WaitGroup
	for i := 0; i < connections; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.download(ctx, length/int64(connections), speedometer); err != nil {
				common.LogWarn("nettester: download connection failed: %v", err)
			}
		}()
	}
	wg.Wait()
	speedometer.Report()
	return speedometer
}

// upload streams generated data to the server, counting as it goes.
func (c *Client) upload(ctx context.Context, length int64, speedometer *Speedometer) error {
	body := &randomReader{
		remaining:   length,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		speedometer: speedometer,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/upload", body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = length

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}

// download reads and discards the server's stream, counting as it goes.
func (c *Client) download(ctx context.Context, length int64, speedometer *Speedometer) error {
	url := fmt.Sprintf("%s/download?length=%d", c.BaseURL, length)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	_, err = io.Copy(&discarder{speedometer: speedometer}, resp.Body)
	return err
}

// randomReader generates length bytes of pseudo-random data on the fly.
type randomReader struct {
	remaining   int64
	rng         *rand.Rand
	speedometer *Speedometer
}

func (r *randomReader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > r.remaining {
		p = p[:r.remaining]
	}
	n, _ := r.rng.Read(p)
	r.remaining -= int64(n)
	r.speedometer.Add(int64(n))
	return n, nil
}

// discarder counts bytes and drops them.
type discarder struct {
	speedometer *Speedometer
}

func (d *discarder) Write(p []byte) (int, error) {
	d.speedometer.Add(int64(len(p)))
	return len(p), nil
}
