package service

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/internal/config"
)

// Moderator inspects an image and returns the unsafe-content labels found.
type Moderator interface {
	Moderate(ctx context.Context, image []byte) ([]string, error)
}

type rekognitionAPI interface {
	DetectModerationLabels(ctx context.Context, params *rekognition.DetectModerationLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectModerationLabelsOutput, error)
}

// RekognitionModerator uses AWS Rekognition DetectModerationLabels.
type RekognitionModerator struct {
	client        rekognitionAPI
	minConfidence float64
}

// NewRekognitionModerator creates a moderator for the configured region.
func NewRekognitionModerator(ctx context.Context, cfg *config.ModerationConfig) (*RekognitionModerator, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return &RekognitionModerator{
		client:        rekognition.NewFromConfig(awsCfg),
		minConfidence: cfg.MinConfidence,
	}, nil
}

func (m *RekognitionModerator) Moderate(ctx context.Context, image []byte) ([]string, error) {
	out, err := m.client.DetectModerationLabels(ctx, &rekognition.DetectModerationLabelsInput{
		Image:         &types.Image{Bytes: image},
		MinConfidence: aws.Float32(float32(m.minConfidence)),
	})
	if err != nil {
		log.Error().Err(err).Msg("AWS DetectModerationLabels failed")
		return nil, fmt.Errorf("provider error: %w", err)
	}

	var labels []string
	for _, l := range out.ModerationLabels {
		if l.Name == nil {
			continue
		}
		if l.Confidence != nil && float64(*l.Confidence) < m.minConfidence {
			continue
		}
		labels = append(labels, *l.Name)
	}
	return labels, nil
}

// NopModerator accepts every image. Used when moderation is disabled.
type NopModerator struct{}

func (NopModerator) Moderate(context.Context, []byte) ([]string, error) { return nil, nil }
