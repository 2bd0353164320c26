package main

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/dekarrin/gudgeon/server"
)

// cmdServe starts the HTTP compiler-as-a-service surface over the
// projects directory named by --projects-dir, guarding its mutation
// endpoint with a bearer token minted from --api-key.
func cmdServe() error {
	if *projectsDir == "" {
		return fmt.Errorf("--projects-dir is required for serve")
	}
	if *apiKey == "" {
		return fmt.Errorf("--api-key is required for serve")
	}
	if *jwtSecret == "" {
		return fmt.Errorf("--jwt-secret is required for serve")
	}

	cache := *cacheFile
	if cache == "" {
		cache = filepath.Join(*projectsDir, "gudgeon-cache.db")
	}

	keyHash, err := server.HashAPIKey(*apiKey)
	if err != nil {
		return fmt.Errorf("hash api key: %w", err)
	}

	srv, err := server.NewServer(*projectsDir, cache, keyHash, []byte(*jwtSecret))
	if err != nil {
		return err
	}
	defer srv.Close()

	fmt.Printf("gudgeon serving on %s (projects: %s)\n", *listenAddr, *projectsDir)
	return http.ListenAndServe(*listenAddr, srv.Routes())
}
