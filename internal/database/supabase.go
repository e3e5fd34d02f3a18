package database

import (
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"github.com/xaytheon/xaytheon-backend/internal/config"
)

// SupabaseService owns the single Supabase client the API talks through.
// PostgREST handles rows, the storage API handles blobs and gotrue handles
// token introspection; all three hang off the same client.
type SupabaseService struct {
	Client *supabase.Client
}

// NewSupabaseService creates the Supabase client from config.
func NewSupabaseService(cfg *config.Config) (*SupabaseService, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		log.Printf("SupabaseService Error: client creation failed: %v", err)
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	log.Printf("SupabaseService Info: connected to %s", cfg.SupabaseURL)
	return &SupabaseService{Client: client}, nil
}
