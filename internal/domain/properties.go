package domain

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Property 是属性表中的一项。Value 保留原始 JSON 文本，未被流水线读写的值按字节透传。
type Property struct {
	Key   string
	Value json.RawMessage
}

// Properties 是有序属性表（保持输入中的 key 顺序；重复 key 也原样保留）。
type Properties []Property

// Get 返回第一个匹配 key 的原始值。
func (p Properties) Get(key string) (json.RawMessage, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

func (p Properties) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// String 仅当值是 JSON 字符串时返回其内容。
func (p Properties) String(key string) (string, bool) {
	raw, ok := p.Get(key)
	if !ok {
		return "", false
	}
	r := gjson.ParseBytes(raw)
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

// SetString 把 key 设为字符串值：已存在则原位替换（保持顺序），否则追加到末尾。
func (p *Properties) SetString(key, value string) {
	raw := EncodeString(value)
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = raw
			return
		}
	}
	*p = append(*p, Property{Key: key, Value: raw})
}

// Delete 删除 key 的所有出现，返回删除的条数。
func (p *Properties) Delete(key string) int {
	out := (*p)[:0]
	n := 0
	for _, kv := range *p {
		if kv.Key == key {
			n++
			continue
		}
		out = append(out, kv)
	}
	*p = out
	return n
}

// Keys 返回按顺序排列的 key 列表。
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for _, kv := range p {
		keys = append(keys, kv.Key)
	}
	return keys
}

// MarshalJSON 按顺序输出对象；值原样拼接。
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(EncodeString(kv.Key))
		buf.WriteByte(':')
		if len(kv.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(kv.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeString 把字符串编码为 JSON 字面量（不做 HTML 转义，保证非 ASCII 字符原样输出）。
func EncodeString(s string) json.RawMessage {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// string 的编码不会失败。
	_ = enc.Encode(s)
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n"))
}
