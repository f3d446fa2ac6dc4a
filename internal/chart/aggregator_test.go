package chart

import (
	"testing"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/meal"
)

func fact(calories int, ts time.Time) meal.MealFact {
	return meal.MealFact{Calories: calories, Timestamp: ts}
}

func TestWeekWindowStartsSunday(t *testing.T) {
	t.Parallel()

	// 2024-03-13是周三，所在周的窗口从周日2024-03-10开始
	ref := time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC)
	start := WindowStart(RangeWeek, ref)
	want := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("周窗口起点 = %v, 期望 %v", start, want)
	}

	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	facts := []meal.MealFact{
		fact(500, monday.Add(8*time.Hour)),
		fact(300, monday.Add(19*time.Hour)),
	}
	buckets := Aggregate(RangeWeek, ref, facts)
	if len(buckets) != 7 {
		t.Fatalf("周窗口桶数 = %d, 期望 7", len(buckets))
	}
	for i, b := range buckets {
		if i == 1 {
			if b.Value != 800 {
				t.Fatalf("周一桶 = %g, 期望 800", b.Value)
			}
			continue
		}
		if b.Value != 0 {
			t.Fatalf("桶 %d = %g, 期望 0", i, b.Value)
		}
	}
}

func TestFixedCardinality(t *testing.T) {
	t.Parallel()

	cases := []struct {
		rng  Range
		ref  time.Time
		want int
	}{
		{RangeDay, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), 24},
		{RangeWeek, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), 7},
		{RangeMonth, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 29}, // 闰年二月
		{RangeMonth, time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), 28},
		{RangeMonth, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), 31},
		{RangeSixMonths, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), 6},
		{RangeYear, time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), 12},
	}
	for _, tc := range cases {
		// 没有任何数据时桶照样齐全
		buckets := Aggregate(tc.rng, tc.ref, nil)
		if len(buckets) != tc.want {
			t.Fatalf("%s@%s 桶数 = %d, 期望 %d", tc.rng, tc.ref.Format("2006-01-02"), len(buckets), tc.want)
		}
		for i, b := range buckets {
			if b.Value != 0 {
				t.Fatalf("%s 空窗口桶 %d = %g, 期望 0", tc.rng, i, b.Value)
			}
			if b.Timestamp.IsZero() {
				t.Fatalf("%s 桶 %d 缺少时间戳", tc.rng, i)
			}
		}
	}
}

func TestDayBucketsByHour(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC)
	facts := []meal.MealFact{
		fact(400, ref.Add(8*time.Hour+30*time.Minute)),
		fact(200, ref.Add(8*time.Hour+45*time.Minute)),
		fact(700, ref.Add(20*time.Hour)),
		fact(999, ref.AddDate(0, 0, 1)), // 次日，窗口外
	}
	buckets := Aggregate(RangeDay, ref, facts)
	if buckets[8].Value != 600 {
		t.Fatalf("8点桶 = %g, 期望 600", buckets[8].Value)
	}
	if buckets[20].Value != 700 {
		t.Fatalf("20点桶 = %g, 期望 700", buckets[20].Value)
	}
	var total float64
	for _, b := range buckets {
		total += b.Value
	}
	if total != 1300 {
		t.Fatalf("窗口合计 = %g, 期望 1300（窗口外记录不计入）", total)
	}
}

func TestMonthlyAverageSkipsZeroDays(t *testing.T) {
	t.Parallel()

	// 一月只有两天有记录: 2000和1000, 平均应为1500而不是除以31
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	jan5 := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	jan20 := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	facts := []meal.MealFact{
		fact(1200, jan5),
		fact(800, jan5.Add(6*time.Hour)),
		fact(1000, jan20),
	}
	buckets := Aggregate(RangeSixMonths, ref, facts)
	if len(buckets) != 6 {
		t.Fatalf("六个月窗口桶数 = %d, 期望 6", len(buckets))
	}
	if buckets[0].Value != 1500 {
		t.Fatalf("一月桶 = %g, 期望 1500（无记录的天不计入分母）", buckets[0].Value)
	}
	for i := 1; i < 6; i++ {
		if buckets[i].Value != 0 {
			t.Fatalf("空月桶 %d = %g, 期望 0", i, buckets[i].Value)
		}
	}
}

func TestYearBucketsCalendarMonths(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	facts := []meal.MealFact{
		fact(1800, time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)),
		fact(2200, time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)),
	}
	buckets := Aggregate(RangeYear, ref, facts)
	if len(buckets) != 12 {
		t.Fatalf("一年窗口桶数 = %d, 期望 12", len(buckets))
	}
	if buckets[0].Timestamp.Month() != time.January {
		t.Fatalf("一年窗口应从一月开始, 实为 %v", buckets[0].Timestamp.Month())
	}
	if buckets[2].Value != 2000 {
		t.Fatalf("三月桶 = %g, 期望 2000", buckets[2].Value)
	}
}

func TestStepClampsAtNow(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

	// 后退总是允许
	back := stepAt(RangeWeek, now, -1, now)
	if !back.Equal(now.AddDate(0, 0, -7)) {
		t.Fatalf("后退一周 = %v, 期望 %v", back, now.AddDate(0, 0, -7))
	}

	// 前进越过当前时刻是无操作
	fwd := stepAt(RangeWeek, now, 1, now)
	if !fwd.Equal(now) {
		t.Fatalf("越过当前时刻的前进应原地不动, 实得 %v", fwd)
	}

	// 从过去前进一步是允许的
	past := now.AddDate(0, 0, -14)
	fwd = stepAt(RangeWeek, past, 1, now)
	if !fwd.Equal(past.AddDate(0, 0, 7)) {
		t.Fatalf("从过去前进一周 = %v, 期望 %v", fwd, past.AddDate(0, 0, 7))
	}

	// 粒度间互不越界: 月窗口前进到包含now的月是允许的
	prevMonth := now.AddDate(0, -1, 0)
	fwd = stepAt(RangeMonth, prevMonth, 1, now)
	if !fwd.Equal(now) {
		t.Fatalf("前进到当前月 = %v, 期望 %v", fwd, now)
	}
}
