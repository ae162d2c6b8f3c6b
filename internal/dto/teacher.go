package dto

// ── 教师模块 DTO ──

// CreateTeacherRequest 创建教师
type CreateTeacherRequest struct {
	Name    string `json:"name"    binding:"required,min=1,max=50"`
	Email   string `json:"email"   binding:"omitempty,email,max=100"`
	Phone   string `json:"phone"   binding:"omitempty,max=20"`
	Subject string `json:"subject" binding:"omitempty,max=50"`
}

// UpdateTeacherRequest 更新教师
type UpdateTeacherRequest struct {
	Name    *string `json:"name"    binding:"omitempty,min=1,max=50"`
	Email   *string `json:"email"   binding:"omitempty,max=100"`
	Phone   *string `json:"phone"   binding:"omitempty,max=20"`
	Subject *string `json:"subject" binding:"omitempty,max=50"`
}

// TeacherResponse 教师信息
type TeacherResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
}
