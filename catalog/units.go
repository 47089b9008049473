package catalog

// Conversion 一条换算事实：1 From = Rate To
type Conversion struct {
	From string `json:"from"`
	To   string `json:"to"`
	Rate int    `json:"rate"`
}

// 单位族 → 换算表，大单位在前
var unitTables = map[string][]Conversion{
	"length": {
		{From: "千米", To: "米", Rate: 1000},
		{From: "米", To: "分米", Rate: 10},
		{From: "米", To: "厘米", Rate: 100},
		{From: "分米", To: "厘米", Rate: 10},
		{From: "厘米", To: "毫米", Rate: 10},
	},
	"money": {
		{From: "元", To: "角", Rate: 10},
		{From: "角", To: "分", Rate: 10},
		{From: "元", To: "分", Rate: 100},
	},
	"time": {
		{From: "时", To: "分", Rate: 60},
		{From: "分", To: "秒", Rate: 60},
		{From: "日", To: "时", Rate: 24},
		{From: "年", To: "月", Rate: 12},
	},
	"weight": {
		{From: "吨", To: "千克", Rate: 1000},
		{From: "千克", To: "克", Rate: 1000},
	},
	"area": {
		{From: "平方米", To: "平方分米", Rate: 100},
		{From: "平方分米", To: "平方厘米", Rate: 100},
		{From: "公顷", To: "平方米", Rate: 10000},
		{From: "平方千米", To: "公顷", Rate: 100},
	},
	"volume": {
		{From: "立方米", To: "立方分米", Rate: 1000},
		{From: "立方分米", To: "立方厘米", Rate: 1000},
	},
	"capacity": {
		{From: "升", To: "毫升", Rate: 1000},
	},
}

// Conversions 返回单位族的换算表，未知单位族返回 nil
func Conversions(family string) []Conversion {
	t, ok := unitTables[family]
	if !ok {
		return nil
	}
	return append([]Conversion(nil), t...)
}
