// The gateway serves the static viewer pages and proxies API calls to the
// document service. Proxying is plain glue: a fixed number of attempts
// with linear backoff, then a 502.
package main

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	maxRetries     = 3
	retryBaseDelay = 1 * time.Second
	proxyTimeout   = 15 * time.Second
)

func main() {
	backendURL := getEnv("BACKEND_URL", "http://localhost:5001")
	staticDir := getEnv("STATIC_DIR", "./public")
	port := getEnv("GATEWAY_PORT", "5000")

	client := &http.Client{Timeout: proxyTimeout}

	r := gin.Default()
	r.Any("/api/*path", proxyHandler(client, backendURL))
	r.Any("/uploads/*path", proxyHandler(client, backendURL))
	r.NoRoute(gin.WrapH(http.FileServer(http.Dir(staticDir))))

	log.Println("Gateway starting on :" + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start gateway: %v", err)
	}
}

func proxyHandler(client *http.Client, backendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to read request body"})
			return
		}

		target := backendURL + c.Request.URL.RequestURI()

		var resp *http.Response
		for attempt := 1; attempt <= maxRetries; attempt++ {
			req, reqErr := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, target, bytes.NewReader(body))
			if reqErr != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": reqErr.Error()})
				return
			}
			copyHeaders(req.Header, c.Request.Header)

			resp, err = client.Do(req)
			if err == nil {
				break
			}
			log.Printf("API proxy error (attempt %d/%d): %v", attempt, maxRetries, err)
			if attempt < maxRetries {
				time.Sleep(time.Duration(attempt) * retryBaseDelay)
			}
		}
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":     "Backend API connection failed after retries",
				"details":   err.Error(),
				"url":       c.Request.URL.Path,
				"method":    c.Request.Method,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
		defer resp.Body.Close()

		copyHeaders(c.Writer.Header(), resp.Header)
		c.Status(resp.StatusCode)
		if _, err := io.Copy(c.Writer, resp.Body); err != nil {
			log.Printf("Failed to copy proxy response: %v", err)
		}
	}
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if key == "Host" {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
