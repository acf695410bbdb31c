package rest

import "github.com/mwenda/somo/internal/domain"

func mapUnitMetadata(dto unitDTO) domain.UnitMetadata {
	return domain.UnitMetadata{
		ID:              dto.ID,
		Title:           dto.Title,
		Description:     dto.Description,
		LessonCount:     dto.LessonCount,
		CoverImageURL:   dto.CoverImageURL,
		SourceUpdatedAt: dto.UpdatedAt,
	}
}

func mapUnitContent(unitID string, dto unitContentDTO) *domain.UnitContent {
	content := &domain.UnitContent{UnitID: unitID}

	for _, l := range dto.Lessons {
		lesson := domain.Lesson{
			ID:       l.ID,
			UnitID:   unitID,
			Title:    l.Title,
			Position: l.Position,
		}
		for _, s := range l.Sections {
			lesson.Sections = append(lesson.Sections, domain.LessonSection{
				Kind:    s.Kind,
				Body:    s.Body,
				AssetID: s.AssetID,
			})
		}
		content.Lessons = append(content.Lessons, lesson)
	}

	for _, e := range dto.Exercises {
		content.Exercises = append(content.Exercises, domain.Exercise{
			ID:           e.ID,
			UnitID:       unitID,
			LessonID:     e.LessonID,
			Prompt:       e.Prompt,
			Choices:      e.Choices,
			AnswerIndex:  e.AnswerIndex,
			Explanation:  e.Explanation,
			AudioAssetID: e.AudioAssetID,
		})
	}

	for _, a := range dto.Assets {
		content.AssetManifest = append(content.AssetManifest, domain.AssetManifestEntry{
			AssetID:  a.ID,
			Kind:     mapAssetKind(a.Kind),
			URL:      a.URL,
			Checksum: a.Checksum,
		})
	}

	return content
}

func mapAssetKind(kind string) domain.AssetKind {
	switch kind {
	case "audio":
		return domain.AssetKindAudio
	default:
		return domain.AssetKindImage
	}
}
