package database

import (
	"fmt"
	"log"

	"github.com/supabase-community/postgrest-go"

	"github.com/xaytheon/xaytheon-backend/internal/models"
)

const contributionsTable = "contributions"

// ContributionRepository defines the row operations for contributions.
// Every method is scoped by the owner's user ID on top of the table's RLS.
type ContributionRepository interface {
	Insert(rec models.NewContribution) (*models.Contribution, error)
	SelectByUser(userID string) ([]models.Contribution, error)
	GetByID(userID, id string) (*models.Contribution, error)
	Delete(userID, id string) error
}

// contributionRepositoryImpl implements ContributionRepository over PostgREST.
type contributionRepositoryImpl struct {
	supabase *SupabaseService
}

// NewContributionRepository creates a new instance of ContributionRepository.
func NewContributionRepository(supabase *SupabaseService) ContributionRepository {
	return &contributionRepositoryImpl{supabase: supabase}
}

// Insert saves a new contribution and returns the stored row, including
// the server-assigned id and created_at.
func (r *contributionRepositoryImpl) Insert(rec models.NewContribution) (*models.Contribution, error) {
	var rows []models.Contribution
	_, err := r.supabase.Client.From(contributionsTable).
		Insert(rec, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		log.Printf("ContributionRepository Error: insert failed: %v", err)
		return nil, fmt.Errorf("failed to insert contribution: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert returned no row")
	}
	return &rows[0], nil
}

// SelectByUser returns all of a user's contributions, newest first.
func (r *contributionRepositoryImpl) SelectByUser(userID string) ([]models.Contribution, error) {
	var rows []models.Contribution
	_, err := r.supabase.Client.From(contributionsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		log.Printf("ContributionRepository Error: select failed for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	return rows, nil
}

// GetByID returns a single contribution, or nil when it does not exist
// (or belongs to someone else, which looks the same from here).
func (r *contributionRepositoryImpl) GetByID(userID, id string) (*models.Contribution, error) {
	var rows []models.Contribution
	_, err := r.supabase.Client.From(contributionsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("id", id).
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contribution %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Delete removes a contribution owned by the given user.
func (r *contributionRepositoryImpl) Delete(userID, id string) error {
	_, _, err := r.supabase.Client.From(contributionsTable).
		Delete("", "").
		Eq("user_id", userID).
		Eq("id", id).
		Execute()
	if err != nil {
		log.Printf("ContributionRepository Error: delete failed for %s: %v", id, err)
		return fmt.Errorf("failed to delete contribution: %w", err)
	}
	return nil
}
