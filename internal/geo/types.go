package geo

// 文档注释：行政区层级的最小数据结构（省/区/县/联合区）
// 约束：字段与参考 JSON 保持一致，全部以字符串承载；外键只做相等比较，不做存在性校验。
type Division struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	BnName string `json:"bn_name"`
	URL    string `json:"url,omitempty"`
}

type District struct {
	ID         string `json:"id"`
	DivisionID string `json:"division_id"`
	Name       string `json:"name"`
	BnName     string `json:"bn_name"`
	Lat        string `json:"lat,omitempty"`
	Lon        string `json:"lon,omitempty"`
	URL        string `json:"url,omitempty"`
}

type Upazila struct {
	ID         string `json:"id"`
	DistrictID string `json:"district_id"`
	Name       string `json:"name"`
	BnName     string `json:"bn_name"`
	URL        string `json:"url,omitempty"`
}

// Union：上级键沿用参考数据的拼写 upazilla_id
type Union struct {
	ID        string `json:"id"`
	UpazilaID string `json:"upazilla_id"`
	Name      string `json:"name"`
	BnName    string `json:"bn_name"`
	URL       string `json:"url,omitempty"`
}

// DistrictArea：区到片区名称列表的附属数据，与联合区层级无关
type DistrictArea struct {
	DistrictID string   `json:"district_id"`
	Areas      []string `json:"areas"`
}

// 文档注释：加载结果快照
// 约束：由数据源一次性构建后交给 NewLookup；之后只读，任何调用方都不得修改其中切片。
type Dataset struct {
	Divisions     []Division
	Districts     []District
	Upazilas      []Upazila
	Unions        []Union
	DistrictAreas []DistrictArea
}

// Counts：各集合记录数，键名与数据文件一致
func (d *Dataset) Counts() map[string]int {
	if d == nil {
		return map[string]int{}
	}
	return map[string]int{
		"divisions":     len(d.Divisions),
		"districts":     len(d.Districts),
		"upazilas":      len(d.Upazilas),
		"unions":        len(d.Unions),
		"district_area": len(d.DistrictAreas),
	}
}
