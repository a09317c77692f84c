package itemgen

import (
	"encoding/json"
	"testing"

	"github.com/abhisek/examprep/internal/exam"
)

func testRequest() BatchRequest {
	bullets := []string{"SO-DIMM modules are used in laptops", "M.2 slots accept SATA and NVMe drives"}
	return BatchRequest{
		Core:       "core1",
		SessionID:  "sess-1",
		Difficulty: exam.DifficultyMedium,
		Items: []exam.PlanItem{
			{DomainNumber: "1.0", DomainLabel: "Mobile Devices", ObjectiveID: "1.1", ObjectiveTitle: "Install laptop hardware", ObjectiveBullets: bullets, AnswerType: exam.AnswerSingle},
			{DomainNumber: "1.0", DomainLabel: "Mobile Devices", ObjectiveID: "1.1", ObjectiveTitle: "Install laptop hardware", ObjectiveBullets: bullets, AnswerType: exam.AnswerMulti},
			{DomainNumber: "5.0", DomainLabel: "Troubleshooting", ObjectiveID: "5.1", ObjectiveTitle: "Apply the methodology", AnswerType: exam.AnswerPBQOrder},
			{DomainNumber: "2.0", DomainLabel: "Networking", ObjectiveID: "2.1", ObjectiveTitle: "Ports and protocols", AnswerType: exam.AnswerPBQMatch},
		},
	}
}

func testItems() []exam.RawItem {
	return []exam.RawItem{
		{Meta: exam.Meta{ObjectiveID: "1.1", Prompt: "Which memory form factor do laptops use?", Explanation: "SO-DIMM."},
			Body: exam.ChoiceBody{Options: []string{"SO-DIMM", "DIMM", "SIMM", "RIMM"}, CorrectIndices: []int{0}}},
		{Meta: exam.Meta{ObjectiveID: "1.1", Prompt: "Which are laptop components? (Select TWO.)", Explanation: "Both."},
			Body: exam.ChoiceBody{Options: []string{"SO-DIMM", "M.2 SSD", "ATX PSU", "Full tower"}, CorrectIndices: []int{0, 1}, Multiple: true}},
		{Meta: exam.Meta{ObjectiveID: "5.1", Prompt: "Order the steps.", Explanation: "Methodology."},
			Body: exam.OrderBody{Items: []string{"Test", "Identify", "Document", "Theory"}, CorrectOrder: []int{1, 3, 0, 2}}},
		{Meta: exam.Meta{ObjectiveID: "2.1", Prompt: "Match ports.", Explanation: "Well known ports."},
			Body: exam.MatchBody{Left: []string{"SSH", "DNS", "HTTPS"}, Right: []string{"443", "22", "53"},
				CorrectPairs: []exam.Pair{{LeftIndex: 0, RightIndex: 1}, {LeftIndex: 1, RightIndex: 2}, {LeftIndex: 2, RightIndex: 0}}}},
	}
}

func encodeItems(t *testing.T, items []exam.RawItem) json.RawMessage {
	t.Helper()
	raw, err := Encode(items)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return raw
}
