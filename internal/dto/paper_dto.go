package dto

import (
	"time"

	"github.com/noah-isme/educonnect-api/internal/models"
)

// PaperRenameRequest updates a paper title.
type PaperRenameRequest struct {
	Title string `json:"title" form:"title" validate:"required,max=255"`
}

// PaperResponse serialises a catalog entry.
type PaperResponse struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Filename   string    `json:"filename"`
	UploadedBy string    `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// NewPaperResponse converts a paper model into a DTO.
func NewPaperResponse(paper models.Paper) PaperResponse {
	return PaperResponse{
		ID:         paper.ID,
		Title:      paper.Title,
		Filename:   paper.Filename,
		UploadedBy: paper.UploadedBy,
		UploadedAt: paper.UploadedAt,
	}
}

// NewPaperResponses converts a slice of papers.
func NewPaperResponses(papers []models.Paper) []PaperResponse {
	responses := make([]PaperResponse, 0, len(papers))
	for _, paper := range papers {
		responses = append(responses, NewPaperResponse(paper))
	}
	return responses
}

// PaperDeleteResponse reports what a paper delete removed.
type PaperDeleteResponse struct {
	ID           uint `json:"id"`
	RemovedFiles int  `json:"removed_files"`
}
