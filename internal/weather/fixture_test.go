package weather

import (
	"fmt"
	"strings"
)

// hourlyPage 生成与气象厅页面结构一致的逐时观测表
func hourlyPage() string {
	var sb strings.Builder
	sb.WriteString(`<html><body><table class="data2_s" id="tablefix1">`)
	sb.WriteString(`<tr><th rowspan="2">時</th><th colspan="2">気圧(hPa)</th></tr>`)
	sb.WriteString(`<tr><th>現地</th><th>海面</th></tr>`)
	sb.WriteString(`<tr><td>単位</td><td>hPa</td></tr>`)

	for hour := 1; hour <= 24; hour++ {
		var pressure string
		switch {
		case hour <= 6:
			pressure = "1010.0"
		case hour <= 12:
			pressure = "1004.0"
		case hour <= 18:
			pressure = "1006.0"
		default:
			pressure = "1012.0"
		}

		precip := "--"
		switch hour {
		case 3:
			precip = "×"
		case 13:
			precip = "1.5"
		case 14:
			precip = "2.0"
		case 22:
			precip = "0.5"
		}

		humidity := "60"
		if hour == 12 {
			humidity = "80"
		}

		sunshine := ""
		if hour >= 8 && hour <= 12 {
			sunshine = "1.0"
		} else if hour == 13 {
			sunshine = "0.5"
		}

		img := ""
		conditions := map[int]string{3: "晴", 6: "快晴", 9: "薄曇", 12: "曇", 15: "雨", 18: "雪", 21: "霧"}
		if c, ok := conditions[hour]; ok {
			img = fmt.Sprintf(`<img src="../../data/image/%d.gif" alt="%s">`, hour, c)
		}

		cells := []string{
			fmt.Sprint(hour), "1000.0", pressure, precip, fmt.Sprintf("%.1f", float64(hour)),
			"5.0", "8.0", humidity, "3.0", "北", sunshine, "", "--", "--", img, "", "",
		}
		sb.WriteString("<tr class=\"mtx\">")
		for _, c := range cells {
			sb.WriteString("<td class=\"data_0_0\">" + c + "</td>")
		}
		sb.WriteString("</tr>")
	}
	// 列数不足的行忽略
	sb.WriteString(`<tr><td>合計</td><td>--</td></tr>`)
	sb.WriteString(`</table></body></html>`)
	return sb.String()
}
