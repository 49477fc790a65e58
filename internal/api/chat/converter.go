package chat

import "github.com/markaz/report-assistant/internal/entity"

func toSessionDTO(session *entity.Session) *entity.SessionDTO {
	messages := make([]entity.MessageDTO, len(session.Messages))
	for i, m := range session.Messages {
		messages[i] = entity.MessageDTO{
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		}
	}

	return &entity.SessionDTO{
		ID:        session.ID,
		Messages:  messages,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func toAskResponse(answer *entity.Answer) *entity.AskResponse {
	return &entity.AskResponse{
		Answer:   answer.Text,
		Passages: toPassageDTOs(answer.Passages),
		Chart:    answer.Chart,
	}
}

func toPassageDTOs(passages []entity.Passage) []entity.PassageDTO {
	dtos := make([]entity.PassageDTO, len(passages))
	for i, p := range passages {
		dtos[i] = entity.PassageDTO{
			Text:   p.Text,
			Score:  p.Score,
			Source: p.Citation(),
			Title:  p.Title,
		}
	}
	return dtos
}
