package stylist

import (
	"fmt"
	"strings"

	"style-assistant-server/modules/common/gemini"
	"style-assistant-server/modules/common/model"
)

// TrendCount - 한 번에 돌려주는 트렌드 수
const TrendCount = 3

// 응답 스키마 - 코디 추천
var outfitSchema = &gemini.Schema{
	Type:     gemini.TypeObject,
	Ordering: []string{"outfitName", "description", "items"},
	Required: []string{"outfitName", "description", "items"},
	Properties: map[string]*gemini.Schema{
		"outfitName": {
			Type:        gemini.TypeString,
			Description: "Tên gợi ý cho bộ trang phục.",
		},
		"description": {
			Type:        gemini.TypeString,
			Description: "Mô tả ngắn gọn về phong cách và dịp phù hợp cho bộ trang phục.",
		},
		"items": {
			Type:        gemini.TypeArray,
			Description: "Danh sách các món đồ trong bộ trang phục.",
			Items: &gemini.Schema{
				Type:     gemini.TypeObject,
				Ordering: []string{"type", "description"},
				Required: []string{"type", "description"},
				Properties: map[string]*gemini.Schema{
					"type": {
						Type:        gemini.TypeString,
						Description: "Loại món đồ (ví dụ: Áo, Quần, Váy, Giày, Phụ kiện).",
					},
					"description": {
						Type:        gemini.TypeString,
						Description: "Mô tả chi tiết về món đồ, bao gồm màu sắc, chất liệu và kiểu dáng.",
					},
				},
			},
		},
	},
}

// 응답 스키마 - 트렌드 배열
var trendsSchema = &gemini.Schema{
	Type:        gemini.TypeArray,
	Description: "Danh sách các xu hướng thời trang.",
	Items: &gemini.Schema{
		Type:     gemini.TypeObject,
		Ordering: []string{"name", "description", "keyItems"},
		Required: []string{"name", "description", "keyItems"},
		Properties: map[string]*gemini.Schema{
			"name":        {Type: gemini.TypeString, Description: "Tên của xu hướng."},
			"description": {Type: gemini.TypeString, Description: "Mô tả về xu hướng."},
			"keyItems": {
				Type:        gemini.TypeArray,
				Description: "Các món đồ chính của xu hướng.",
				Items:       &gemini.Schema{Type: gemini.TypeString},
			},
		},
	},
}

func outfitPrompt(in OutfitInput) string {
	return fmt.Sprintf(
		"Hãy đóng vai một nhà tạo mẫu thời trang chuyên nghiệp. Dựa trên các thông tin sau: "+
			"Dáng người - %s, Phong cách - %s, Dịp - %s, Thời tiết - %s. Hãy gợi ý một bộ trang phục hoàn chỉnh.",
		in.BodyShape, in.Style, in.Occasion, in.Weather,
	)
}

func outfitImagePrompt(items []model.OutfitItem) string {
	descriptions := make([]string, 0, len(items))
	for _, item := range items {
		descriptions = append(descriptions, item.Description)
	}
	return fmt.Sprintf(
		"Một bức ảnh thời trang full-body, chất lượng cao của một người mẫu đang mặc bộ trang phục sau: %s. "+
			"Bối cảnh studio tối giản, ánh sáng đẹp.",
		strings.Join(descriptions, ", "),
	)
}

func trendsSearchPrompt(category string) string {
	return fmt.Sprintf(
		"Tìm kiếm và tổng hợp ba xu hướng thời trang nổi bật nhất hiện nay hoặc theo chủ đề \"%s\". "+
			"Cung cấp một cái tên, mô tả ngắn gọn, và danh sách các món đồ chính cho mỗi xu hướng.",
		category,
	)
}

func trendsStructurePrompt(raw string) string {
	return "Dựa trên thông tin sau đây về các xu hướng thời trang, hãy trích xuất và định dạng thành một mảng JSON gồm ba đối tượng xu hướng. " +
		"Mỗi đối tượng cần có 'name' (string), 'description' (string), và 'keyItems' (một mảng các chuỗi). Dữ liệu thô:\n\n" +
		raw +
		"\n\nĐảm bảo cấu trúc JSON hợp lệ và chỉ trả về mảng JSON."
}

func trendImagePrompt(t model.Trend) string {
	return fmt.Sprintf(
		"Một bức ảnh thời trang nghệ thuật chất lượng cao thể hiện xu hướng \"%s\". Bao gồm các món đồ chính như %s. "+
			"Phong cách hiện đại, sống động, bối cảnh phù hợp với xu hướng.",
		t.Name, strings.Join(t.KeyItems, ", "),
	)
}

func itemTextPrompt(text string) string {
	return fmt.Sprintf(
		"Cung cấp thông tin về món đồ thời trang sau: \"%s\". Mô tả phong cách, các thương hiệu có thể có, và gợi ý cách phối đồ.",
		text,
	)
}

func itemTextImagePrompt(text string) string {
	return fmt.Sprintf(
		"Một bức ảnh thời trang, chất lượng cao của món đồ sau: \"%s\", được phối trong một bộ trang phục hoàn chỉnh trên người mẫu.",
		text,
	)
}

const itemImageAnalysisPrompt = "Mô tả món đồ thời trang này. Phong cách của nó là gì, có thể là của những thương hiệu nào, và gợi ý các món đồ để phối cùng?"

const itemImageRestylePrompt = "Tạo một hình ảnh mới, trong đó một người mẫu đang mặc món đồ này như một phần của một bộ trang phục thời trang hoàn chỉnh. " +
	"Giữ lại phong cách của món đồ gốc nhưng đặt nó trong một bối cảnh mới."
