package service

import (
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
)

// DashboardService 生产看板聚合
type DashboardService struct {
	logRepo *repository.ActivityLogRepository
}

func NewDashboardService(logRepo *repository.ActivityLogRepository) *DashboardService {
	return &DashboardService{logRepo: logRepo}
}

// DailyReport 某天的操作员日报
type DailyReport struct {
	Date      string                     `json:"date"`
	Operators []repository.OperatorDaily `json:"operators"`
}

// Daily 按操作员聚合某天的报工次数、件数与时长
// date 为 YYYY-MM-DD，为空取当天
func (s *DashboardService) Daily(date string) (*DailyReport, error) {
	day := time.Now()
	if date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("无效的日期: %s", date)
		}
		day = parsed
	}
	rows, err := s.logRepo.DailySummary(day)
	if err != nil {
		return nil, err
	}
	return &DailyReport{Date: day.Format("2006-01-02"), Operators: rows}, nil
}
