// Package images implements image generation through the Hugging Face
// router, blob persistence for the results, and per-user history.
package images

import "time"

// GeneratedImage is a stored generation result. URL is the serving path
// derived from the file name, not a stored column.
type GeneratedImage struct {
	ID        int64     `json:"id"`
	FileName  string    `json:"file_name"`
	Prompt    string    `json:"prompt"`
	URL       string    `json:"url"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// GenerateRequest describes an image to generate. Zero-valued tuning
// fields are omitted from the upstream call.
type GenerateRequest struct {
	Prompt            string `json:"prompt"`
	NegativePrompt    string `json:"negative_prompt"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	NumInferenceSteps int    `json:"num_inference_steps"`
}
