package model

// EstimatorState は分類器の学習状態を表す。
// スナップショットの initialized フラグに対応する2状態のみを持つ。
type EstimatorState int

const (
	// NotFitted は未学習の状態。予測要求は境界層で拒否される
	NotFitted EstimatorState = iota
	// Fitted は学習済み（またはスナップショット復元済み）の状態
	Fitted
)

// BaseEstimator は分類器に埋め込まれる学習状態の管理構造体。
// 同期機構を持たない素の値であり、共有インスタンスへの排他制御は
// 所有する側（サービス層）の責務。
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted は予測を受け付けられる状態かどうかを返す
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted は学習完了またはスナップショット復元後に呼び、
// モデルを学習済み状態に遷移させる
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset は未学習状態に戻す。再設定で新しいインスタンスに
// 置き換える場合はこの呼び出しは不要
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
