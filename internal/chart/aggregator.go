package chart

import (
	"errors"
	"math"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/meal"
)

// Range 是图表的时间窗口粒度。
type Range string

const (
	RangeDay       Range = "day"
	RangeWeek      Range = "week"
	RangeMonth     Range = "month"
	RangeSixMonths Range = "sixMonths"
	RangeYear      Range = "year"
)

// ErrUnknownRange 表示不支持的窗口粒度。
var ErrUnknownRange = errors.New("未知的图表粒度")

// ValidRange 判断给定粒度是否受支持。
func ValidRange(r Range) bool {
	switch r {
	case RangeDay, RangeWeek, RangeMonth, RangeSixMonths, RangeYear:
		return true
	}
	return false
}

// Bucket 是图表中的一个桶。空桶的Value为0，桶本身永不缺席。
type Bucket struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// WindowStart 返回包含ref的窗口起点。
// 周窗口从ref当天或之前最近的周日开始；月/年窗口对齐自然月/自然年；
// 六个月窗口以ref所在月为终点往前数满6个月。
func WindowStart(rng Range, ref time.Time) time.Time {
	loc := ref.Location()
	switch rng {
	case RangeDay:
		return time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
	case RangeWeek:
		day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)
		return day.AddDate(0, 0, -int(day.Weekday()))
	case RangeMonth:
		return time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	case RangeSixMonths:
		return time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -5, 0)
	case RangeYear:
		return time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, loc)
	}
	return ref
}

// windowEnd 返回窗口的开区间终点。
func windowEnd(rng Range, start time.Time) time.Time {
	switch rng {
	case RangeDay:
		return start.AddDate(0, 0, 1)
	case RangeWeek:
		return start.AddDate(0, 0, 7)
	case RangeMonth:
		return start.AddDate(0, 1, 0)
	case RangeSixMonths:
		return start.AddDate(0, 6, 0)
	case RangeYear:
		return start.AddDate(1, 0, 0)
	}
	return start
}

// bucketCount 返回窗口的固定桶数。
// 桶数只由窗口本身决定，与数据多少无关。
func bucketCount(rng Range, start time.Time) int {
	switch rng {
	case RangeDay:
		return 24
	case RangeWeek:
		return 7
	case RangeMonth:
		// 下月1号减去本月1号的天数
		return int(start.AddDate(0, 1, 0).Sub(start).Hours() / 24)
	case RangeSixMonths:
		return 6
	case RangeYear:
		return 12
	}
	return 0
}

// Aggregate 把一组餐食事实聚合成固定基数的图表桶。
// 小时/天粒度的桶值是窗口内热量的直接求和；
// 月粒度（六个月/一年）的桶值是该月各“有记录的天”日合计的平均值，
// 无记录的天不计入分母，整月无记录时桶值为0。
func Aggregate(rng Range, ref time.Time, facts []meal.MealFact) []Bucket {
	start := WindowStart(rng, ref)
	end := windowEnd(rng, start)
	count := bucketCount(rng, start)

	buckets := make([]Bucket, count)
	switch rng {
	case RangeDay:
		for i := range buckets {
			buckets[i].Timestamp = start.Add(time.Duration(i) * time.Hour)
		}
	case RangeWeek, RangeMonth:
		for i := range buckets {
			buckets[i].Timestamp = start.AddDate(0, 0, i)
		}
	case RangeSixMonths, RangeYear:
		for i := range buckets {
			buckets[i].Timestamp = start.AddDate(0, i, 0)
		}
	}

	switch rng {
	case RangeDay:
		for i := range facts {
			ts := facts[i].Timestamp
			if ts.Before(start) || !ts.Before(end) {
				continue
			}
			buckets[ts.Hour()].Value += float64(facts[i].Calories)
		}
	case RangeWeek, RangeMonth:
		for i := range facts {
			ts := facts[i].Timestamp
			if ts.Before(start) || !ts.Before(end) {
				continue
			}
			day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, start.Location())
			idx := int(day.Sub(start).Hours() / 24)
			buckets[idx].Value += float64(facts[i].Calories)
		}
	case RangeSixMonths, RangeYear:
		// 先按天合计，再把日合计折算进所属月份的平均
		daily := make(map[string]float64)
		for i := range facts {
			ts := facts[i].Timestamp
			if ts.Before(start) || !ts.Before(end) {
				continue
			}
			daily[ts.Format("2006-01-02")] += float64(facts[i].Calories)
		}
		sums := make([]float64, count)
		days := make([]int, count)
		for key, total := range daily {
			day, _ := time.ParseInLocation("2006-01-02", key, start.Location())
			idx := (day.Year()-start.Year())*12 + int(day.Month()) - int(start.Month())
			sums[idx] += total
			days[idx]++
		}
		for i := range buckets {
			if days[i] > 0 {
				buckets[i].Value = math.Round(sums[i] / float64(days[i]))
			}
		}
	}

	return buckets
}

// Step 把窗口参考点向前或向后移动一个单位。
// 向前一步若使窗口起点越过当前时刻则原地不动：未来没有数据可看。
func Step(rng Range, ref time.Time, dir int) time.Time {
	return stepAt(rng, ref, dir, time.Now())
}

// stepAt 是带显式“现在”的实现，便于测试固定时间。
func stepAt(rng Range, ref time.Time, dir int, now time.Time) time.Time {
	if dir == 0 {
		return ref
	}
	unit := 1
	if dir < 0 {
		unit = -1
	}

	var next time.Time
	switch rng {
	case RangeDay:
		next = ref.AddDate(0, 0, unit)
	case RangeWeek:
		next = ref.AddDate(0, 0, 7*unit)
	case RangeMonth:
		next = ref.AddDate(0, unit, 0)
	case RangeSixMonths:
		next = ref.AddDate(0, 6*unit, 0)
	case RangeYear:
		next = ref.AddDate(unit, 0, 0)
	default:
		return ref
	}

	if unit > 0 && WindowStart(rng, next).After(now) {
		return ref
	}
	return next
}
