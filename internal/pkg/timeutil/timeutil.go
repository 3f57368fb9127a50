package timeutil

import "time"

func NowMillis() int64 {
	return time.Now().UnixMilli()
}

func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}
