// Package geojson 负责 feature collection 的读取与回写。
//
// 只解析流水线需要的部分（features、id、properties），geometry 与其它字段按原始 JSON 透传。
package geojson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/John-Robertt/geoclean/internal/domain"
)

// InputError 表示输入文件不可读或文档结构非法（致命错误：整次运行中止，不写任何输出）。
type InputError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("输入文件 %q 无效：%s：%v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("输入文件 %q 无效：%s", e.Path, e.Reason)
}

func (e *InputError) Unwrap() error { return e.Err }

// IsInputError 判断 err 是否为 InputError。
func IsInputError(err error) bool {
	var e *InputError
	return errors.As(err, &e)
}

// ReadFile 读取并解析 path 指向的数据集。
func ReadFile(path string) (*domain.Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &InputError{Path: path, Reason: "无法读取", Err: err}
	}
	return Decode(path, b)
}

// Decode 解析 feature collection。path 仅用于错误信息。
func Decode(path string, b []byte) (*domain.Dataset, error) {
	if !gjson.ValidBytes(b) {
		return nil, &InputError{Path: path, Reason: "不是合法的 JSON"}
	}
	root := gjson.ParseBytes(b)
	if !root.IsObject() {
		return nil, &InputError{Path: path, Reason: "顶层必须是对象"}
	}
	if t := root.Get("type"); t.Exists() && t.String() != "FeatureCollection" {
		return nil, &InputError{Path: path, Reason: fmt.Sprintf("type 必须是 FeatureCollection，实际是 %q", t.String())}
	}
	features := root.Get("features")
	if !features.IsArray() {
		return nil, &InputError{Path: path, Reason: "缺少 features 数组"}
	}

	ds := &domain.Dataset{
		Path: path,
		Raw:  json.RawMessage(root.Raw),
	}

	var decErr error
	idx := 0
	features.ForEach(func(_, f gjson.Result) bool {
		rec, err := decodeFeature(idx, f)
		if err != nil {
			decErr = &InputError{Path: path, Reason: fmt.Sprintf("features[%d]：%s", idx, err.Error())}
			return false
		}
		ds.Records = append(ds.Records, rec)
		idx++
		return true
	})
	if decErr != nil {
		return nil, decErr
	}
	return ds, nil
}

func decodeFeature(idx int, f gjson.Result) (*domain.Record, error) {
	if !f.IsObject() {
		return nil, errors.New("feature 必须是对象")
	}
	rec := &domain.Record{
		Index: idx,
		ID:    domain.FallbackID(idx),
		Raw:   json.RawMessage(f.Raw),
	}
	if id := f.Get("id"); id.Exists() && id.Type != gjson.Null {
		if id.Type == gjson.String {
			rec.ID = id.Str
		} else {
			rec.ID = id.Raw
		}
	}
	if g := f.Get("geometry"); g.Exists() {
		rec.Geometry = json.RawMessage(g.Raw)
	}

	props := f.Get("properties")
	switch {
	case !props.Exists() || props.Type == gjson.Null:
		// 缺失/null：保持原样。
	case props.IsObject():
		rec.HasProps = true
		rec.Props = make(domain.Properties, 0, 16)
		props.ForEach(func(k, v gjson.Result) bool {
			rec.Props = append(rec.Props, domain.Property{Key: k.String(), Value: json.RawMessage(v.Raw)})
			return true
		})
	default:
		return nil, errors.New("properties 必须是对象")
	}
	return rec, nil
}

var prettyOptions = &pretty.Options{Width: 80, Prefix: "", Indent: "  ", SortKeys: false}

// Encode 把（已修改的）数据集编码回文档：只替换每个 feature 的 properties 与顶层 features，
// 其它字段保持原始顺序与内容；输出统一缩进，便于 diff。
func Encode(ds *domain.Dataset) ([]byte, error) {
	if ds == nil {
		return nil, errors.New("dataset 不能为空")
	}

	var arr bytes.Buffer
	arr.WriteByte('[')
	for i, rec := range ds.Records {
		if i > 0 {
			arr.WriteByte(',')
		}
		raw := []byte(rec.Raw)
		if rec.HasProps {
			props, err := rec.Props.MarshalJSON()
			if err != nil {
				return nil, err
			}
			raw, err = sjson.SetRawBytes(raw, "properties", props)
			if err != nil {
				return nil, fmt.Errorf("features[%d]：写回 properties 失败：%w", rec.Index, err)
			}
		}
		arr.Write(raw)
	}
	arr.WriteByte(']')

	doc, err := sjson.SetRawBytes([]byte(ds.Raw), "features", arr.Bytes())
	if err != nil {
		return nil, fmt.Errorf("写回 features 失败：%w", err)
	}
	if !gjson.ValidBytes(doc) {
		return nil, errors.New("编码结果不是合法的 JSON")
	}
	return pretty.PrettyOptions(doc, prettyOptions), nil
}
