// Package client 课程表 HTTP API 的 Go 客户端，解析统一响应信封 {code,message,data}。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
)

// 与服务端约定的业务错误码
const (
	CodeNoBaseline   = 13002
	CodeCellOccupied = 14003
)

// APIError 服务端返回的非 0 业务码
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (http %d): %s", e.Code, e.Status, e.Message)
}

// IsNoBaseline 是否为"未保存原始课表"错误
func IsNoBaseline(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeNoBaseline
}

// Client API 客户端
type Client struct {
	baseURL string
	http    *http.Client
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New 创建客户端；baseURL 形如 http://localhost:3000
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("编码请求失败: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: 解析响应失败 (http %d): %w", method, path, resp.StatusCode, err)
	}
	if env.Code != 0 || resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// ── 教师 / 学期 / 课表 ──

func (c *Client) ListTeachers(ctx context.Context) ([]dto.TeacherResponse, error) {
	var out []dto.TeacherResponse
	return out, c.do(ctx, http.MethodGet, "/teachers", nil, &out)
}

func (c *Client) CreateTeacher(ctx context.Context, req *dto.CreateTeacherRequest) (*dto.TeacherResponse, error) {
	var out dto.TeacherResponse
	if err := c.do(ctx, http.MethodPost, "/teachers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetCurrentSemester(ctx context.Context) (*dto.SemesterResponse, error) {
	var out dto.SemesterResponse
	if err := c.do(ctx, http.MethodGet, "/semesters/current", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetTeacherSchedule(ctx context.Context, teacherID string) (*dto.ScheduleResponse, error) {
	var out dto.ScheduleResponse
	if err := c.do(ctx, http.MethodGet, "/schedules/teacher/"+url.PathEscape(teacherID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── 对账操作 ──

func (c *Client) GetOriginal(ctx context.Context, scheduleID string) (*dto.OriginalScheduleResponse, error) {
	var out dto.OriginalScheduleResponse
	if err := c.do(ctx, http.MethodGet, "/schedules/"+url.PathEscape(scheduleID)+"/original", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetWeek(ctx context.Context, scheduleID string, week int) (*dto.WeekScheduleResponse, error) {
	var out dto.WeekScheduleResponse
	path := "/schedules/" + url.PathEscape(scheduleID) + "/week/" + strconv.Itoa(week)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveOriginal source 为空时由服务端按 auto 处理
func (c *Client) SaveOriginal(ctx context.Context, scheduleID, source string) (*dto.SaveOriginalResponse, error) {
	var out dto.SaveOriginalResponse
	req := dto.SaveOriginalRequest{Source: source}
	if err := c.do(ctx, http.MethodPost, "/schedules/"+url.PathEscape(scheduleID)+"/save-original", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reset(ctx context.Context, scheduleID string) (*dto.ResetResponse, error) {
	var out dto.ResetResponse
	if err := c.do(ctx, http.MethodPost, "/schedules/"+url.PathEscape(scheduleID)+"/reset", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.ArrangementResponse, error) {
	var out dto.ArrangementResponse
	if err := c.do(ctx, http.MethodPost, "/courses", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MoveCourse(ctx context.Context, id string, req *dto.MoveCourseRequest) (*dto.MoveResponse, error) {
	var out dto.MoveResponse
	if err := c.do(ctx, http.MethodPut, "/courses/"+url.PathEscape(id)+"/move", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCourse(ctx context.Context, id string, editMode bool) error {
	path := "/courses/" + url.PathEscape(id) + "?edit_mode=" + strconv.FormatBool(editMode)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) CreateSpecialCare(ctx context.Context, req *dto.CreateSpecialCareRequest) (*dto.ArrangementResponse, error) {
	var out dto.ArrangementResponse
	if err := c.do(ctx, http.MethodPost, "/special-care", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
