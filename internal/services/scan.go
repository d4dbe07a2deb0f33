package services

import (
	"log"

	"github.com/Basic-PDF-Manager/Document-Service/internal/blob"
	clamd "github.com/dutchcoders/go-clamd"
)

// ScanUpload streams a stored binary through ClamAV. When a signature
// matches, onInfected is invoked so the caller can remove the document.
// Intended to run in its own goroutine after the upload has already been
// accepted.
func ScanUpload(store blob.FileStore, clamAvURL, docID, storedName string, onInfected func()) {
	f, err := store.Open(storedName)
	if err != nil {
		log.Println("Failed to open file for scanning:", err)
		return
	}
	defer f.Close()

	c := clamd.NewClamd(clamAvURL)
	abort := make(chan bool)
	defer close(abort)

	response, err := c.ScanStream(f, abort)
	if err != nil {
		log.Println("Scan failed:", err)
		return
	}

	for res := range response {
		if res.Status == clamd.RES_FOUND {
			log.Printf("Virus detected in %s: %s", docID, res.Description)
			if onInfected != nil {
				onInfected()
			}
			return
		}
	}
	log.Printf("Scan finished for %s: clean", docID)
}
