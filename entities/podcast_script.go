package entities

import (
	"time"

	"github.com/google/uuid"

	"lecturecast/constant"
)

type PodcastScript struct {
	ID          uuid.UUID             `json:"id"`
	LectureID   uuid.UUID             `json:"lecture_id"`
	Format      constant.ScriptFormat `json:"format"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Script      string                `json:"script"`
	GeneratedAt time.Time             `json:"generated_at"`
}
