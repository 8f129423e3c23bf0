package reporter

import (
	"fmt"
	"io"

	"bitget-grid-bot-go/internal/ledger"
	"bitget-grid-bot-go/internal/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// PrintSessionReport 在会话结束时输出本次运行的成交明细表和已实现利润汇总。
// 卖出成交按账本的配对规则计算利润；无法配对时显示 "--" 而不是 0。
func PrintSessionReport(w io.Writer, symbol string, led *ledger.TradeLedger) {
	if led == nil || led.Len() == 0 {
		fmt.Fprintf(w, "本次会话 (%s) 没有产生任何成交。\n", symbol)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("成交记录 %s", symbol))
	t.AppendHeader(table.Row{"时间", "方向", "价格", "数量", "利润"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	var totalProfit float64
	var pairedSells int
	for _, trade := range led.Trades() {
		profitCell := "--"
		if trade.Side == models.Sell {
			if profit := led.ComputeProfit(trade); profit != nil {
				profitCell = fmt.Sprintf("%.2f", *profit)
				totalProfit += *profit
				pairedSells++
			}
		}
		t.AppendRow(table.Row{
			trade.Timestamp.Format("15:04:05"),
			string(trade.Side),
			fmt.Sprintf("%.4f", trade.Price),
			fmt.Sprintf("%.4f", trade.Quantity),
			profitCell,
		})
	}
	t.AppendFooter(table.Row{"", "", "", "合计", fmt.Sprintf("%.2f", totalProfit)})
	t.Render()

	fmt.Fprintf(w, "共 %d 笔成交，其中 %d 笔卖出完成配对，已实现利润 %.2f USDT。\n",
		led.Len(), pairedSells, totalProfit)
}
