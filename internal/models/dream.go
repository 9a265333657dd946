package models

// Dream type labels.
const (
	DreamTypeDream     = "rêve"
	DreamTypeNightmare = "cauchemar"
)

// DreamModel is one recorded and analyzed dream.
//
// EmotionScores holds the full softmax-normalized emotion distribution.
// InterpretationJSON holds the four-lens interpretation record as raw JSON so
// that the lens ordering produced by the generator survives storage intact.
type DreamModel struct {
	Base
	UserID             string             `json:"user_id"             gorm:"index;not null"`
	Transcription      string             `json:"transcription"       gorm:"type:longtext;not null"`
	EmotionScores      map[string]float64 `json:"emotions"            gorm:"type:longtext;serializer:json"`
	DominantEmotion    string             `json:"dominant_emotion"    gorm:"size:50"`
	EmotionConfidence  float64            `json:"emotion_confidence"`
	DreamType          string             `json:"dream_type"          gorm:"size:10;default:'rêve'"`
	InterpretationJSON string             `json:"-"                   gorm:"type:longtext"`
	ImagePath          string             `json:"image_path"`
	ImagePrompt        string             `json:"image_prompt"        gorm:"type:text"`
	IsAnalyzed         bool               `json:"is_analyzed"         gorm:"default:false"`
}

func (DreamModel) TableName() string { return "dreams" }

// ShortTranscription returns a preview of the transcription for listings.
func (d *DreamModel) ShortTranscription() string {
	runes := []rune(d.Transcription)
	if len(runes) <= 100 {
		return d.Transcription
	}
	return string(runes[:100]) + "..."
}
