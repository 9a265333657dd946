// Package dream is the diary module: it runs the analysis pipeline on an
// uploaded recording and serves the resulting entries.
package dream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/onyria-app/core/internal/models"
	"github.com/onyria-app/core/internal/modules/processing/emotion"
	"github.com/onyria-app/core/internal/modules/processing/imagegen"
	"github.com/onyria-app/core/internal/modules/processing/interpret"
	"github.com/onyria-app/core/internal/pkg/pagination"
	"github.com/onyria-app/core/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Pipeline stages. The diary only needs these narrow views of the
// processing services.
type (
	Transcriber interface {
		Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)
	}
	EmotionAnalyzer interface {
		Analyze(ctx context.Context, text string) (*emotion.Result, error)
	}
	Interpreter interface {
		Generate(ctx context.Context, narrative string) (*interpret.Record, error)
	}
	ImageGenerator interface {
		Generate(ctx context.Context, narrative string) (*imagegen.Result, error)
	}
)

type Service struct {
	db          *gorm.DB
	transcriber Transcriber
	emotions    EmotionAnalyzer
	interpreter Interpreter
	images      ImageGenerator
	logger      *zap.Logger
}

type ServiceOption func(*Service)

func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(db *gorm.DB, transcriber Transcriber, emotions EmotionAnalyzer, interpreter Interpreter, images ImageGenerator, opts ...ServiceOption) *Service {
	s := &Service{
		db:          db,
		transcriber: transcriber,
		emotions:    emotions,
		interpreter: interpreter,
		images:      images,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the full pipeline on one recording and persists the entry.
// Transcription, classification and interpretation failures abort with their
// typed error; an image failure only leaves ImagePath empty.
func (s *Service) Analyze(ctx context.Context, userID string, audio io.Reader, filename string) (*models.DreamModel, *interpret.Record, error) {
	text, err := s.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return nil, nil, err
	}

	emo, err := s.emotions.Analyze(ctx, text)
	if err != nil {
		return nil, nil, err
	}

	record, err := s.interpreter.Generate(ctx, text)
	if err != nil {
		return nil, nil, err
	}

	interpretationJSON, err := json.Marshal(record)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", interpret.ErrGenerationFailed, err)
	}

	entry := &models.DreamModel{
		UserID:             userID,
		Transcription:      text,
		EmotionScores:      emo.Scores,
		DominantEmotion:    emo.Dominant,
		EmotionConfidence:  emo.Confidence,
		DreamType:          emo.DreamType,
		InterpretationJSON: string(interpretationJSON),
		IsAnalyzed:         true,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, nil, err
	}

	s.attachImage(ctx, entry, text)

	return entry, record, nil
}

// attachImage generates and stores the illustration. Any failure is logged
// and swallowed so the analysis response still goes out.
func (s *Service) attachImage(ctx context.Context, entry *models.DreamModel, narrative string) {
	if s.images == nil {
		return
	}

	res, err := s.images.Generate(ctx, narrative)
	if err != nil {
		if errors.Is(err, imagegen.ErrDisabled) {
			s.logger.Debug("image generation disabled, skipping illustration")
		} else {
			s.logger.Warn("dream illustration failed", zap.String("dream_id", entry.ID), zap.Error(err))
		}
		return
	}

	updates := map[string]any{
		"image_path":   res.Path,
		"image_prompt": res.Prompt,
	}
	if err := s.db.WithContext(ctx).Model(entry).Updates(updates).Error; err != nil {
		s.logger.Warn("failed to record dream image path", zap.String("dream_id", entry.ID), zap.Error(err))
		return
	}
	entry.ImagePath = res.Path
	entry.ImagePrompt = res.Prompt

	ref := &models.FileReferenceModel{
		UserID:  entry.UserID,
		RefType: models.FileRefDreamImage,
		RefID:   entry.ID,
		Path:    res.Path,
		MIME:    "image/png",
	}
	if err := s.db.WithContext(ctx).Create(ref).Error; err != nil {
		s.logger.Warn("failed to record dream image reference", zap.String("dream_id", entry.ID), zap.Error(err))
	}
}

// List returns the user's diary, newest first.
func (s *Service) List(ctx context.Context, userID string, q pagination.Query) ([]models.DreamModel, response.Pagination, error) {
	query := s.db.WithContext(ctx).
		Model(&models.DreamModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	var dreams []models.DreamModel
	page, err := pagination.Paginate(query, q, &dreams)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return dreams, page, nil
}

// GetByID fetches one entry, scoped to its owner.
func (s *Service) GetByID(ctx context.Context, userID, id string) (*models.DreamModel, error) {
	var entry models.DreamModel
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Delete soft-deletes an entry and flags its stored files for the cleanup job.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	entry, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(entry).Error; err != nil {
		return err
	}

	now := time.Now()
	return s.db.WithContext(ctx).
		Model(&models.FileReferenceModel{}).
		Where("ref_type = ? AND ref_id = ?", models.FileRefDreamImage, entry.ID).
		Update("deleted_by", &now).Error
}

// Stats builds the "profil onirique" summary of a user's diary.
func (s *Service) Stats(ctx context.Context, userID string) (*statsResponse, error) {
	type groupCount struct {
		Key string
		N   int64
	}

	var typeRows []groupCount
	err := s.db.WithContext(ctx).
		Model(&models.DreamModel{}).
		Select("dream_type AS `key`, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("dream_type").
		Scan(&typeRows).Error
	if err != nil {
		return nil, err
	}

	var emotionRows []groupCount
	err = s.db.WithContext(ctx).
		Model(&models.DreamModel{}).
		Select("dominant_emotion AS `key`, COUNT(*) AS n").
		Where("user_id = ?", userID).
		Group("dominant_emotion").
		Scan(&emotionRows).Error
	if err != nil {
		return nil, err
	}

	typeCounts := make(map[string]int64, len(typeRows))
	for _, row := range typeRows {
		typeCounts[row.Key] = row.N
	}
	emotionCounts := make(map[string]int64, len(emotionRows))
	for _, row := range emotionRows {
		emotionCounts[row.Key] = row.N
	}

	stats := computeStats(typeCounts, emotionCounts)
	return &stats, nil
}

// computeStats derives the profile labels from raw per-type and per-emotion
// counts. A tie between rêves and cauchemars counts as a dreamer profile.
func computeStats(typeCounts, emotionCounts map[string]int64) statsResponse {
	var total int64
	for _, n := range typeCounts {
		total += n
	}

	if total == 0 {
		return statsResponse{
			StatutReveuse:       "silence onirique",
			PourcentageReveuse:  0,
			LabelReveuse:        "rêves enregistrés",
			EmotionDominante:    "émotion endormie",
			EmotionDominantePct: 0,
		}
	}

	reves := typeCounts[models.DreamTypeDream]
	cauchemars := typeCounts[models.DreamTypeNightmare]

	out := statsResponse{
		Total:      total,
		Reves:      reves,
		Cauchemars: cauchemars,
	}

	if cauchemars > reves {
		out.StatutReveuse = "en proie aux cauchemars"
		out.LabelReveuse = "cauchemars"
		out.PourcentageReveuse = int(cauchemars * 100 / total)
	} else {
		out.StatutReveuse = "âme rêveuse"
		out.LabelReveuse = "rêves"
		out.PourcentageReveuse = int(reves * 100 / total)
	}

	var best string
	var bestCount int64 = -1
	for code, n := range emotionCounts {
		if n > bestCount || (n == bestCount && code < best) {
			best = code
			bestCount = n
		}
	}
	if bestCount > 0 {
		out.EmotionDominante = best
		out.EmotionDominantePct = int(bestCount * 100 / total)
	}

	return out
}

// parseInterpretation decodes the stored four-lens record. Entries written
// before an analysis completed have none.
func parseInterpretation(raw string) *interpret.Record {
	if raw == "" {
		return nil
	}
	var record interpret.Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil
	}
	return &record
}

func imagePathPtr(path string) *string {
	if path == "" {
		return nil
	}
	return &path
}

// emotionLabel maps an emotion code to its display name, falling back to the
// raw code for values outside the taxonomy.
func emotionLabel(code string) string {
	if label, ok := emotion.Labels[code]; ok {
		return label
	}
	return code
}

// dreamTypeLabel formats the stored dream type for responses.
func dreamTypeLabel(raw string) string {
	if label, ok := dreamTypeLabels[raw]; ok {
		return label
	}
	return raw
}

func newDreamItem(d *models.DreamModel) dreamItem {
	return dreamItem{
		ID:              d.ID,
		Created:         d.CreatedAt,
		Transcription:   d.ShortTranscription(),
		DominantEmotion: d.DominantEmotion,
		EmotionLabel:    emotionLabel(d.DominantEmotion),
		DreamType:       dreamTypeLabel(d.DreamType),
		ImagePath:       imagePathPtr(d.ImagePath),
		IsAnalyzed:      d.IsAnalyzed,
	}
}

func newDreamDetail(d *models.DreamModel) dreamDetail {
	return dreamDetail{
		ID:              d.ID,
		Created:         d.CreatedAt,
		Modified:        d.UpdatedAt,
		Transcription:   d.Transcription,
		EmotionScores:   d.EmotionScores,
		DominantEmotion: EmotionTuple{Label: emotionLabel(d.DominantEmotion), Confidence: d.EmotionConfidence},
		DreamType:       dreamTypeLabel(d.DreamType),
		Interpretation:  parseInterpretation(d.InterpretationJSON),
		ImagePath:       imagePathPtr(d.ImagePath),
		IsAnalyzed:      d.IsAnalyzed,
	}
}

func newAnalyzeResponse(d *models.DreamModel, record *interpret.Record) analyzeResponse {
	return analyzeResponse{
		Success:         true,
		ID:              d.ID,
		Transcription:   d.Transcription,
		DominantEmotion: EmotionTuple{Label: emotionLabel(d.DominantEmotion), Confidence: d.EmotionConfidence},
		DreamType:       dreamTypeLabel(d.DreamType),
		Interpretation:  record,
		ImagePath:       imagePathPtr(d.ImagePath),
	}
}
