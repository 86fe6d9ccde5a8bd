// Package classify owns the classifier lifecycle: bootstrapping from the
// seed corpus, retraining from a user's confirmed transactions, and serving
// predictions and model introspection.
package classify

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"smart-budgeter-backend/internal/ml"
	"smart-budgeter-backend/internal/repository"
)

type Service struct {
	transactions *repository.TransactionRepository
	classifier   *ml.LinearClassifier
	modelPath    string
	log          zerolog.Logger
}

func NewService(transactions *repository.TransactionRepository, classifier *ml.LinearClassifier, modelPath string, log zerolog.Logger) *Service {
	return &Service{
		transactions: transactions,
		classifier:   classifier,
		modelPath:    modelPath,
		log:          log,
	}
}

// Initialize trains on the built-in seed corpus alone and persists the
// result. It makes a fresh deployment useful before any user has confirmed
// a single category.
func (s *Service) Initialize(ctx context.Context) (*ml.TrainResult, error) {
	descriptions, labels := ml.SeedTrainingData()
	result, err := s.classifier.Train(descriptions, labels)
	if err != nil {
		return nil, err
	}
	if err := s.classifier.Save(); err != nil {
		return nil, err
	}

	s.log.Info().
		Float64("test_accuracy", result.TestAccuracy).
		Int("samples", result.SamplesTrained+result.SamplesTested).
		Msg("classifier initialized from seed corpus")

	return result, nil
}

// Train retrains on a user's confirmed transactions blended with the seed
// corpus. The seed keeps every category represented even when the user's
// own history covers only a few.
func (s *Service) Train(ctx context.Context, userID uuid.UUID) (*ml.TrainResult, error) {
	confirmed, err := s.transactions.ListCategorizedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	descriptions, labels := ml.SeedTrainingData()
	for _, tx := range confirmed {
		if tx.Category == nil {
			continue
		}
		descriptions = append(descriptions, tx.Description)
		labels = append(labels, tx.Category.Name)
	}

	result, err := s.classifier.Train(descriptions, labels)
	if err != nil {
		return nil, err
	}
	if err := s.classifier.Save(); err != nil {
		return nil, err
	}

	s.log.Info().
		Stringer("user_id", userID).
		Int("user_samples", len(confirmed)).
		Float64("test_accuracy", result.TestAccuracy).
		Msg("classifier retrained")

	return result, nil
}

func (s *Service) Predict(description string) (string, float64) {
	return s.classifier.Predict(description)
}

func (s *Service) PredictBatch(descriptions []string) []ml.Prediction {
	return s.classifier.PredictBatch(descriptions)
}

func (s *Service) FeatureImportance(category string, topN int) []ml.Feature {
	return s.classifier.FeatureImportance(category, topN)
}

// EnsureLoaded pulls the persisted model into memory if one exists. Called
// once at startup; a missing artifact is fine.
func (s *Service) EnsureLoaded() (bool, error) {
	return s.classifier.Load()
}

// Status describes the current model for the status endpoint.
type Status struct {
	Ready       bool       `json:"ready"`
	Classes     []string   `json:"classes,omitempty"`
	NumFeatures int        `json:"num_features,omitempty"`
	TrainedAt   *time.Time `json:"trained_at,omitempty"`
}

func (s *Service) Status() Status {
	classes, features, ok := s.classifier.Info()
	if !ok {
		return Status{Ready: false}
	}

	status := Status{Ready: true, Classes: classes, NumFeatures: features}
	if info, err := os.Stat(s.modelPath); err == nil {
		mod := info.ModTime()
		status.TrainedAt = &mod
	}
	return status
}
