package simhash

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const story = "서울시가 15일 대중교통 요금 체계를 전면 개편하는 방안을 발표했다. " +
	"시는 거리 비례제를 확대하고 청소년 할인 폭을 넓히겠다고 밝혔다. " +
	"개편안에 따르면 기본요금은 유지하되 10km를 넘는 구간부터 추가 요금이 부과된다."

func TestFingerprint_IdenticalTexts(t *testing.T) {
	if Fingerprint(story) != Fingerprint(story) {
		t.Error("identical texts produced different fingerprints")
	}
}

func TestFingerprint_IgnoresLayout(t *testing.T) {
	reflowed := strings.ReplaceAll(story, " ", "\n ")
	if d := Distance(Fingerprint(story), Fingerprint(reflowed)); d != 0 {
		t.Errorf("whitespace changes moved the fingerprint by %d bits", d)
	}
}

func TestFingerprint_DifferentTexts(t *testing.T) {
	other := "프로야구 개막전에서 홈팀이 연장 접전 끝에 승리를 거뒀다. 마무리 투수는 세이브를 기록했다."
	if d := Distance(Fingerprint(story), Fingerprint(other)); d <= DuplicateThreshold {
		t.Errorf("unrelated texts are within the duplicate threshold: %d", d)
	}
}

func TestFingerprint_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   \t\n  ", "...!!"} {
		if fp := Fingerprint(in); fp != 0 {
			t.Errorf("Fingerprint(%q) = %064b, want 0", in, fp)
		}
	}
}

func TestFingerprint_ShortInput(t *testing.T) {
	if Fingerprint("뉴스") == 0 {
		t.Error("short input should produce a non-zero fingerprint")
	}
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
		want int
	}{
		{"identical", 0xFF, 0xFF, 0},
		{"all different", 0, ^uint64(0), 64},
		{"one bit", 0, 1, 1},
		{"two bits", 0, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.want {
				t.Errorf("Distance(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilar(t *testing.T) {
	a, b := Fingerprint(story), Fingerprint("완전히 다른 내용의 짧은 글")
	dist := Distance(a, b)
	if Similar(a, b, dist-1) {
		t.Errorf("similar at threshold %d (distance is %d)", dist-1, dist)
	}
	if !Similar(a, b, dist) {
		t.Errorf("not similar at threshold equal to distance (%d)", dist)
	}
}

func TestDuplicateOf(t *testing.T) {
	other := "프로야구 개막전에서 홈팀이 연장 접전 끝에 승리를 거뒀다. 마무리 투수는 세이브를 기록했다."
	texts := []string{story, "", other, story, "  " + story + "\n", other}

	got := DuplicateOf(texts)

	want := []int{-1, -1, -1, 0, 0, 2}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DuplicateOf (-want +got):\n%s", diff)
	}
}
