package document

import (
	"context"
	"tender-docs/internal/core/domain"
)

// UploadBatch uploads files one after the other once the batch limits pass.
// A failed file does not stop the others; each result carries its own error.
func (s *documentService) UploadBatch(ctx context.Context, reqs []domain.UploadRequest) ([]domain.UploadResult, error) {

	candidates := make([]domain.FileCandidate, 0, len(reqs))
	for _, req := range reqs {
		candidates = append(candidates, req.Candidate())
	}
	if err := ValidateBatch(candidates, s.policy); err != nil {
		return nil, err
	}

	results := make([]domain.UploadResult, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			results = append(results, domain.UploadResult{FileName: req.FileName, Err: err})
			continue
		}
		id, err := s.Upload(ctx, req)
		results = append(results, domain.UploadResult{FileName: req.FileName, DocumentID: id, Err: err})
	}
	return results, nil
}
