package aggregator

import "fmt"

const (
	// ActivitySleep 睡眠
	ActivitySleep = 72
	// ActivityMeditation 冥想
	ActivityMeditation = 45

	// SleepLabel 睡眠会话的标签，不计入活动汇总
	SleepLabel = "Sleeping"
)

// activityNames Google Fit 活动类型编码 -> 英文名称
var activityNames = map[int]string{
	0: "In vehicle",
	1: "Biking",
	2: "On foot",
	3: "Still",
	4: "Unknown",
	5: "Tilting",
	7: "Walking",
	8: "Running",
	56: "Jogging",
	93: "Walking (fitness)",
	94: "Nordic walking",
	95: "Walking (treadmill)",
	116: "Walking (stroller)",
	9: "Aerobics",
	10: "Badminton",
	11: "Baseball",
	12: "Basketball",
	13: "Biathlon",
	14: "Handbiking",
	15: "Mountain biking",
	16: "Road biking",
	17: "Spinning",
	18: "Stationary biking",
	19: "Utility biking",
	20: "Boxing",
	21: "Calisthenics",
	22: "Circuit training",
	23: "Cricket",
	24: "Dancing",
	25: "Elliptical",
	26: "Fencing",
	27: "Football (American)",
	28: "Football (Australian)",
	29: "Football (Soccer)",
	30: "Frisbee",
	31: "Gardening",
	32: "Golf",
	33: "Gymnastics",
	34: "Handball",
	35: "Hiking",
	36: "Hockey",
	37: "Horseback riding",
	38: "Housework",
	39: "Jumping rope",
	40: "Kayaking",
	41: "Kettlebell training",
	42: "Kickboxing",
	43: "Kitesurfing",
	44: "Martial arts",
	45: "Meditation",
	46: "Mixed martial arts",
	47: "P90X exercises",
	48: "Paragliding",
	49: "Pilates",
	50: "Polo",
	51: "Racquetball",
	52: "Rock climbing",
	53: "Rowing",
	54: "Rowing machine",
	55: "Rugby",
	57: "Sand volleyball",
	58: "Sailing",
	59: "Scuba diving",
	60: "Skateboarding",
	61: "Skating",
	62: "Skiing",
	63: "Skiing (cross-country)",
	64: "Skiing (downhill)",
	65: "Snowboarding",
	66: "Snowmobile",
	67: "Snowshoeing",
	68: "Squash",
	69: "Stair climbing",
	70: "Stair climbing machine",
	71: "Stand-up paddleboarding",
	72: "Sleeping",
	73: "Surfing",
	74: "Swimming",
	75: "Swimming (pool)",
	76: "Swimming (open water)",
	77: "Table tennis",
	78: "Team sports",
	79: "Tennis",
	80: "Strength training",
	81: "Treadmill",
	82: "Volleyball",
	83: "Wakeboarding",
	84: "Water polo",
	85: "Weightlifting",
	86: "Wheelchair",
	87: "Windsurfing",
	88: "Yoga",
	89: "Zumba",
	90: "Curling",
	91: "Crossfit",
	92: "Elevator",
	96: "Running (treadmill)",
	97: "Ice skating",
	98: "Indoor skating",
	99: "Cross skating",
	100: "Inline skating",
	101: "High intensity interval training",
	102: "Interval training",
	103: "Light sleep",
	104: "Deep sleep",
	105: "REM sleep",
	106: "Awake during sleep cycle",
	107: "Archery",
	108: "Other",
	109: "Light sleep",
	110: "Deep sleep",
	111: "REM sleep",
	112: "Awake",
	113: "Downhill skiing",
	114: "Cross-country skiing",
	115: "Kite skiing",
	117: "Roller skiing",
	118: "Sledding",
	119: "HIIT",
	120: "Guided breathing",
}

// ActivityName 活动类型编码对应的名称，未知编码返回 "Other (Type N)"
func ActivityName(code int) string {
	if name, ok := activityNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Other (Type %d)", code)
}
