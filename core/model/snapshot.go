package model

import (
	"encoding/json"
	"io"
	"os"

	"github.com/jeffreire/creditrisk-api/pkg/errors"
)

// Snapshot はモデルの全状態を表す構造体（シリアライゼーション用）。
// 1ファイル = 1スナップショット。読み込み時に欠けているフィールドは
// ゼロ値で補完される（bias → 0.0、initialized → false）ため、
// bias導入以前・initializedフラグ導入以前に保存された状態とも後方互換。
// 書き込み時は常に全フィールドを出力する（omitemptyを付けない）。
type Snapshot struct {
	// Weights は重み係数（長さ = 特徴量数）
	Weights []float64 `json:"weights"`

	// Bias は切片。旧形式には存在しないため読み込み時のデフォルトは0.0
	Bias float64 `json:"bias"`

	// LearningRate は学習率
	LearningRate float64 `json:"learning_rate"`

	// Initialized はモデルが学習済みかどうか。
	// 旧形式には存在しないため読み込み時のデフォルトはfalse
	Initialized bool `json:"initialized"`
}

// ToJSON はSnapshotをJSON形式にシリアライズ
func (s *Snapshot) ToJSON() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.NewModelError("Snapshot.ToJSON", "encode failed", err)
	}
	return data, nil
}

// FromJSON はJSON形式からSnapshotをデシリアライズ
func (s *Snapshot) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, s); err != nil {
		return errors.NewModelError("Snapshot.FromJSON", "decode failed", err)
	}
	return nil
}

// Clone はSnapshotのディープコピーを作成
func (s *Snapshot) Clone() *Snapshot {
	clone := &Snapshot{
		Bias:         s.Bias,
		LearningRate: s.LearningRate,
		Initialized:  s.Initialized,
		Weights:      make([]float64, len(s.Weights)),
	}
	copy(clone.Weights, s.Weights)
	return clone
}

// SaveSnapshot はスナップショットをファイルに保存する
//
// パラメータ:
//   - s: 保存するスナップショット
//   - filename: 保存先のファイルパス
//
// 戻り値:
//   - error: 保存に失敗した場合のエラー（原因を保持したModelError）
func SaveSnapshot(s *Snapshot, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.NewModelError("SaveSnapshot", "failed to create file", err)
	}
	defer file.Close()

	return WriteSnapshot(s, file)
}

// LoadSnapshot はファイルからスナップショットを読み込む。
// 失敗した場合はnilとエラーを返すのみで、呼び出し側の既存状態には触れない。
func LoadSnapshot(filename string) (*Snapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.NewModelError("LoadSnapshot", "failed to open file", err)
	}
	defer file.Close()

	return ReadSnapshot(file)
}

// WriteSnapshot はスナップショットをio.Writerに保存する
func WriteSnapshot(s *Snapshot, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if err := encoder.Encode(s); err != nil {
		return errors.NewModelError("WriteSnapshot", "encode failed", err)
	}
	return nil
}

// ReadSnapshot はio.Readerからスナップショットを読み込む
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&s); err != nil {
		return nil, errors.NewModelError("ReadSnapshot", "decode failed", err)
	}
	return &s, nil
}
