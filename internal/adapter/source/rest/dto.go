package rest

// unitListResponse is the envelope for GET /api/v1/units
type unitListResponse struct {
	Units []unitDTO `json:"units"`
}

// unitDTO is the lightweight unit row returned by the list endpoint
type unitDTO struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	LessonCount   int    `json:"lesson_count"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	UpdatedAt     int64  `json:"updated_at"`
}

// unitContentDTO is the full payload from GET /api/v1/units/{id}/content
type unitContentDTO struct {
	Unit      unitDTO       `json:"unit"`
	Lessons   []lessonDTO   `json:"lessons"`
	Exercises []exerciseDTO `json:"exercises"`
	Assets    []assetDTO    `json:"assets"`
}

type lessonDTO struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Position int          `json:"position"`
	Sections []sectionDTO `json:"sections"`
}

type sectionDTO struct {
	Kind    string `json:"kind"`
	Body    string `json:"body,omitempty"`
	AssetID string `json:"asset_id,omitempty"`
}

type exerciseDTO struct {
	ID           string   `json:"id"`
	LessonID     string   `json:"lesson_id,omitempty"`
	Prompt       string   `json:"prompt"`
	Choices      []string `json:"choices"`
	AnswerIndex  int      `json:"answer_index"`
	Explanation  string   `json:"explanation,omitempty"`
	AudioAssetID string   `json:"audio_asset_id,omitempty"`
}

type assetDTO struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	URL      string `json:"url"`
	Checksum string `json:"checksum,omitempty"`
}
