// Package grid 负责把价格区间划分为离散的网格线。
package grid

import "bitget-grid-bot-go/internal/models"

// ComputeLevels 根据区间、网格数与投资额计算全部网格线。
// 产生 count+1 条价格严格递增的网格线：第 i 条价格为 lower + i*step，
// 偶数序号为买入线（最低一条恒为买入），数量为单格投资额除以该线价格。
// 纯函数；参数不合法时返回 *models.ConfigError，不做任何 I/O。
func ComputeLevels(lower, upper float64, count int, investment float64) ([]models.GridLevel, error) {
	if lower <= 0 {
		return nil, &models.ConfigError{Field: "lower_price", Reason: "必须为正数"}
	}
	if upper <= lower {
		return nil, &models.ConfigError{Field: "upper_price", Reason: "必须大于 lower_price"}
	}
	if count < 1 {
		return nil, &models.ConfigError{Field: "grid_count", Reason: "必须不小于 1"}
	}
	if investment <= 0 {
		return nil, &models.ConfigError{Field: "investment", Reason: "必须为正数"}
	}

	step := (upper - lower) / float64(count)
	perLevel := investment / float64(count+1)

	levels := make([]models.GridLevel, 0, count+1)
	for i := 0; i <= count; i++ {
		price := lower + float64(i)*step
		levels = append(levels, models.GridLevel{
			Price:    price,
			IsBuy:    i%2 == 0,
			Quantity: perLevel / price,
		})
	}
	return levels, nil
}
