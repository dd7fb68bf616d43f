package weather

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ErrTableNotFound 页面中没有逐时观测表
var ErrTableNotFound = errors.New("hourly observation table not found")

// 逐时观测表列序号
const (
	colHour        = 0
	colSeaPressure = 2
	colPrecip      = 3
	colTemperature = 4
	colHumidity    = 7
	colSunshine    = 10
	colWeather     = 14
	minColumns     = 15
	headerRows     = 3
	tableClass     = "data2_s"
)

// HourlyObservation 一小时的观测值，nil 表示缺测
type HourlyObservation struct {
	Hour             int
	SeaLevelPressure *float64
	Precipitation    *float64
	Temperature      *float64
	Humidity         *int
	Sunshine         *float64
	Condition        string
}

// ParseHourly 解析气象厅逐时观测页面
func ParseHourly(r io.Reader) ([]HourlyObservation, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	table := findTable(doc)
	if table == nil {
		return nil, ErrTableNotFound
	}

	var out []HourlyObservation
	for i, row := range collect(table, "tr") {
		if i < headerRows {
			continue
		}
		cells := collect(row, "td")
		if len(cells) < minColumns {
			continue
		}
		hour, err := strconv.Atoi(cellText(cells[colHour]))
		if err != nil {
			continue
		}

		obs := HourlyObservation{Hour: hour}
		obs.SeaLevelPressure = parseFloat(cellText(cells[colSeaPressure]))
		if raw := cellText(cells[colPrecip]); present(raw) {
			// 降水量无法解析（如 ×）按 0 处理
			v := 0.0
			if p := parseFloat(raw); p != nil {
				v = *p
			}
			obs.Precipitation = &v
		}
		obs.Temperature = parseFloat(cellText(cells[colTemperature]))
		if v := parseFloat(cellText(cells[colHumidity])); v != nil {
			h := int(*v)
			obs.Humidity = &h
		}
		obs.Sunshine = parseFloat(cellText(cells[colSunshine]))
		obs.Condition = imgAlt(cells[colWeather])

		out = append(out, obs)
	}
	return out, nil
}

func findTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" && hasClass(n, tableClass) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTable(c); t != nil {
			return t
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, f := range strings.Fields(a.Val) {
				if f == class {
					return true
				}
			}
		}
	}
	return false
}

// collect 按文档顺序收集所有指定标签的后代节点
func collect(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

func cellText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

func imgAlt(n *html.Node) string {
	for _, img := range collect(n, "img") {
		for _, a := range img.Attr {
			if a.Key == "alt" {
				return a.Val
			}
		}
	}
	return ""
}

func present(s string) bool {
	return s != "" && s != "--"
}

// parseFloat 缺测或无法解析时返回 nil
// 质量标记（")" "]"）会被去掉
func parseFloat(s string) *float64 {
	if !present(s) {
		return nil
	}
	s = strings.TrimSpace(strings.TrimRight(s, " )]"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
