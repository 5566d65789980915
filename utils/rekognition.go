package utils

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

type RekognitionDetector struct {
	client        *rekognition.Client
	maxLabels     int32
	minConfidence float32
}

func NewRekognitionDetector(cfg aws.Config) *RekognitionDetector {
	return &RekognitionDetector{
		client:        rekognition.NewFromConfig(cfg),
		maxLabels:     5,
		minConfidence: 75,
	}
}

// DetectLabels returns label names for a base64 data URI image, most confident first.
func (r *RekognitionDetector) DetectLabels(ctx context.Context, dataURI string) ([]string, error) {
	img, err := ParseDataURI(dataURI)
	if err != nil {
		return nil, err
	}

	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: img.Data},
		MaxLabels:     aws.Int32(r.maxLabels),
		MinConfidence: aws.Float32(r.minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to detect labels: %w", err)
	}

	labels := make([]string, 0, len(out.Labels))
	for _, l := range out.Labels {
		if l.Name != nil {
			labels = append(labels, *l.Name)
		}
	}
	return labels, nil
}
