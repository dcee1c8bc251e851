package analyzer

import (
	"regexp"
	"sort"
)

// ValuePattern 识别出的取值模式
type ValuePattern string

const (
	PatternEmail ValuePattern = "email"
	PatternURL   ValuePattern = "url"
	PatternDate  ValuePattern = "date"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	urlPattern   = regexp.MustCompile(`^https?://`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

// PatternSet 批次文档的字段出现规律与取值模式
type PatternSet struct {
	// RepeatedFields 在至少90%文档中出现的字段路径，升序排列
	RepeatedFields []string `json:"repeated_fields"`
	// OptionalFields 在不足50%文档中出现的字段路径，升序排列。
	// 出现率在50%到90%之间的字段既不算重复也不算可选
	OptionalFields []string `json:"optional_fields"`
	// ValuePatterns 重复字段（最多前10个）识别出的取值模式
	ValuePatterns map[string]ValuePattern `json:"value_patterns"`
	// ArrayLengths 预留字段，暂未填充
	ArrayLengths []int `json:"array_lengths"`
}

// DetectPatterns 统计每个字段路径在批次中的出现率，
// 并对重复字段做取值模式识别
func (a *Analyzer) DetectPatterns(documents []any) PatternSet {
	patterns := PatternSet{
		RepeatedFields: []string{},
		OptionalFields: []string{},
		ValuePatterns:  map[string]ValuePattern{},
		ArrayLengths:   []int{},
	}
	if len(documents) == 0 {
		return patterns
	}

	presence := make(map[string]int)
	for _, doc := range documents {
		for path := range a.fieldPaths(doc) {
			presence[path]++
		}
	}

	paths := make([]string, 0, len(presence))
	for path := range presence {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	total := float64(len(documents))
	for _, path := range paths {
		ratio := float64(presence[path]) / total
		switch {
		case ratio >= repeatedThreshold:
			patterns.RepeatedFields = append(patterns.RepeatedFields, path)
		case ratio < optionalThreshold:
			patterns.OptionalFields = append(patterns.OptionalFields, path)
		}
	}

	// 只检查前10个重复字段的取值
	limit := patternFieldLimit
	if len(patterns.RepeatedFields) < limit {
		limit = len(patterns.RepeatedFields)
	}
	for _, path := range patterns.RepeatedFields[:limit] {
		values := gatherValues(documents, path)
		if pattern, ok := detectValuePattern(values); ok {
			patterns.ValuePatterns[path] = pattern
		}
	}

	return patterns
}

// gatherValues 收集所有含有该字段的文档在该路径处的取值
func gatherValues(documents []any, path string) []any {
	values := make([]any, 0, len(documents))
	for _, doc := range documents {
		if value, ok := fieldValue(doc, path); ok {
			values = append(values, value)
		}
	}
	return values
}

// detectValuePattern 对前5个采样值做模式匹配，
// 按邮箱、URL、日期的顺序检查，首个全部命中的模式胜出
func detectValuePattern(values []any) (ValuePattern, bool) {
	if len(values) == 0 {
		return "", false
	}
	if len(values) > patternSampleSize {
		values = values[:patternSampleSize]
	}

	checks := []struct {
		pattern ValuePattern
		re      *regexp.Regexp
	}{
		{PatternEmail, emailPattern},
		{PatternURL, urlPattern},
		{PatternDate, datePattern},
	}

	for _, check := range checks {
		if allMatch(values, check.re) {
			return check.pattern, true
		}
	}
	return "", false
}

func allMatch(values []any, re *regexp.Regexp) bool {
	for _, value := range values {
		s, ok := value.(string)
		if !ok || !re.MatchString(s) {
			return false
		}
	}
	return true
}
