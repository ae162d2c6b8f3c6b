package dto

// ── 学期模块 DTO ──

// CreateSemesterRequest 创建学期
type CreateSemesterRequest struct {
	Name      string `json:"name"       binding:"required,min=2,max=50"`
	StartDate string `json:"start_date" binding:"required"` // "2024-09-02"
	EndDate   string `json:"end_date"   binding:"required"` // "2025-01-17"
	IsCurrent bool   `json:"is_current"`
}

// SemesterResponse 学期信息
type SemesterResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	IsCurrent   bool   `json:"is_current"`
	CurrentWeek int    `json:"current_week"`
}
