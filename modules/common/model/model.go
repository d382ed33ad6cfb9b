package model

// OutfitItem - 코디를 구성하는 한 아이템
type OutfitItem struct {
	Type        string `json:"type"`        // Áo, Quần, Váy, Giày, Phụ kiện ...
	Description string `json:"description"` // 색상, 소재, 디자인
}

// OutfitRecommendation - 코디 추천 결과
type OutfitRecommendation struct {
	OutfitName  string       `json:"outfitName"`
	Description string       `json:"description"`
	Items       []OutfitItem `json:"items"`
	ImageURL    string       `json:"imageUrl"`
}

// Source - grounding 출처 (URI는 항상 비어 있지 않음)
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// Trend - 패션 트렌드 하나
type Trend struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	KeyItems    []string `json:"keyItems"`
	ImageURL    string   `json:"imageUrl"`
	SourceURLs  []Source `json:"sourceUrls,omitempty"`
}

// ItemAnalysis - 아이템 분석 결과
type ItemAnalysis struct {
	Description string   `json:"description"` // 줄바꿈 포함 가능
	ImageURL    string   `json:"imageUrl"`
	SourceURLs  []Source `json:"sourceUrls,omitempty"`
}
