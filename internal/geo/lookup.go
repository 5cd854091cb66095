// 包 geo：行政区层级只读查询（省 → 区 → 县 → 联合区）以及区到片区的映射
package geo

import (
	"slices"

	"bd-geo/internal/logger"
	"bd-geo/internal/metrics"
)

// 文档注释：查询器
// 约束：构造时按上级键建立子集合索引，保持数据集原有顺序；构造后不再写入，可被任意协程并发读取。
// 返回值均为副本，调用方修改不会影响后续查询。
type Lookup struct {
	divisions []Division
	districts map[string][]District
	upazilas  map[string][]Upazila
	unions    map[string][]Union
	areas     map[string][]string
}

// NewLookup：基于快照构建查询器；ds 为 nil 时等价于空数据集
func NewLookup(ds *Dataset) *Lookup {
	if ds == nil {
		ds = &Dataset{}
	}
	lk := &Lookup{
		divisions: ds.Divisions,
		districts: groupBy(ds.Districts, func(d District) string { return d.DivisionID }),
		upazilas:  groupBy(ds.Upazilas, func(u Upazila) string { return u.DistrictID }),
		unions:    groupBy(ds.Unions, func(u Union) string { return u.UpazilaID }),
		areas:     make(map[string][]string, len(ds.DistrictAreas)),
	}
	for _, a := range ds.DistrictAreas {
		// 重复的 district_id 以首条为准
		if _, ok := lk.areas[a.DistrictID]; ok {
			logger.L().Debug("district_area_duplicate_ignored", "district_id", a.DistrictID)
			continue
		}
		lk.areas[a.DistrictID] = a.Areas
	}
	logger.L().Debug("lookup_ready",
		"divisions", len(ds.Divisions),
		"districts", len(ds.Districts),
		"upazilas", len(ds.Upazilas),
		"unions", len(ds.Unions),
		"district_area", len(lk.areas),
	)
	return lk
}

func groupBy[T any](items []T, key func(T) string) map[string][]T {
	m := make(map[string][]T)
	for _, it := range items {
		k := key(it)
		m[k] = append(m[k], it)
	}
	return m
}

// Divisions：返回全部省级记录（数据集顺序）
func (l *Lookup) Divisions() []Division {
	out := clone(l.divisions)
	observe("divisions", len(out))
	return out
}

// DistrictsByDivision：division_id 精确相等的区；无匹配返回空切片
func (l *Lookup) DistrictsByDivision(divisionID string) []District {
	out := clone(l.districts[divisionID])
	observe("districts_by_division", len(out))
	logger.L().Debug("lookup_districts", "division_id", divisionID, "count", len(out))
	return out
}

// UpazilasByDistrict：district_id 精确相等的县
func (l *Lookup) UpazilasByDistrict(districtID string) []Upazila {
	out := clone(l.upazilas[districtID])
	observe("upazilas_by_district", len(out))
	logger.L().Debug("lookup_upazilas", "district_id", districtID, "count", len(out))
	return out
}

// UnionsByUpazila：upazilla_id 精确相等的联合区
func (l *Lookup) UnionsByUpazila(upazilaID string) []Union {
	out := clone(l.unions[upazilaID])
	observe("unions_by_upazila", len(out))
	logger.L().Debug("lookup_unions", "upazila_id", upazilaID, "count", len(out))
	return out
}

// 文档注释：按区查询片区列表
// 返回：首条匹配记录的片区（原顺序）；不存在时返回空切片而非报错，与其余查询保持一致。
func (l *Lookup) AreasByDistrict(districtID string) []string {
	out, _ := l.LookupAreas(districtID)
	return out
}

// LookupAreas：同 AreasByDistrict，额外返回记录是否存在
func (l *Lookup) LookupAreas(districtID string) ([]string, bool) {
	a, ok := l.areas[districtID]
	out := clone(a)
	observe("areas_by_district", len(out))
	logger.L().Debug("lookup_areas", "district_id", districtID, "found", ok, "count", len(out))
	return out, ok
}

// clone 保证返回非 nil 切片，便于序列化为 []
func clone[T any](s []T) []T {
	if len(s) == 0 {
		return []T{}
	}
	return slices.Clone(s)
}

func observe(op string, n int) {
	metrics.LookupsTotal.WithLabelValues(op).Inc()
	if n == 0 {
		metrics.LookupEmptyTotal.WithLabelValues(op).Inc()
	}
}
