// Package metrics は分類モデルの評価指標を提供する
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/jeffreire/creditrisk-api/pkg/errors"
)

// logLossEpsilon は予測確率のクリッピング値（log(0)を避けるため）
const logLossEpsilon = 1e-15

// Accuracy は正解率を計算する
// Accuracy = (正しく分類されたサンプル数) / (全サンプル数)
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("Accuracy", "nil vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}

	return float64(correct) / float64(n), nil
}

// ClassificationError は誤分類率（1 - Accuracy）を計算する
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1.0 - acc, nil
}

// BinaryLogLoss は二値分類の交差エントロピー損失を計算する
//
// LogLoss = -(1/n) * Σ[y*log(p) + (1-y)*log(1-p)]
//
// 予測確率は log(0) を避けるため [ε, 1-ε] にクリップされる。
// ラベルは0または1でなければならない。
func BinaryLogLoss(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("BinaryLogLoss", "nil vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("BinaryLogLoss", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("BinaryLogLoss", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		y := yTrue.AtVec(i)
		if y != 0.0 && y != 1.0 {
			return 0, errors.NewValueError("BinaryLogLoss", "labels must be binary (0 or 1)")
		}

		p := yPred.AtVec(i)
		if p < logLossEpsilon {
			p = logLossEpsilon
		} else if p > 1.0-logLossEpsilon {
			p = 1.0 - logLossEpsilon
		}

		sum += y*math.Log(p) + (1.0-y)*math.Log(1.0-p)
	}

	return -sum / float64(n), nil
}

// AUC はROC曲線下面積を計算する（二値分類のみ）
//
// 全ての（陽性, 陰性）ペアについて、陽性サンプルのスコアが陰性サンプルの
// スコアより高ければ1、同点なら0.5として数え上げる。
// 陽性または陰性のサンプルが存在しない場合は未定義となり、
// UndefinedMetricWarningを発生させて0.5を返す。
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AUC", "nil vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}

	var positives, negatives []float64
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1.0:
			positives = append(positives, yPred.AtVec(i))
		case 0.0:
			negatives = append(negatives, yPred.AtVec(i))
		default:
			return 0, errors.NewValueError("AUC", "labels must be binary (0 or 1)")
		}
	}

	if len(positives) == 0 || len(negatives) == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC",
			"only one class present in yTrue", 0.5))
		return 0.5, nil
	}

	var sum float64
	for _, pos := range positives {
		for _, neg := range negatives {
			switch {
			case pos > neg:
				sum += 1.0
			case pos == neg:
				sum += 0.5
			}
		}
	}

	return sum / float64(len(positives)*len(negatives)), nil
}

// AUCMatrix は行列形式の入力に対してAUCを計算する（先頭列のみを使用）
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AUCMatrix", "nil matrix")
	}

	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()

	if rTrue == 0 || cTrue == 0 || rPred == 0 || cPred == 0 {
		return 0, errors.NewValueError("AUCMatrix", "empty matrix")
	}
	if rPred != rTrue {
		return 0, errors.NewDimensionError("AUCMatrix", rTrue, rPred, 0)
	}

	yTrueVec := mat.NewVecDense(rTrue, nil)
	yPredVec := mat.NewVecDense(rTrue, nil)
	for i := 0; i < rTrue; i++ {
		yTrueVec.SetVec(i, yTrue.At(i, 0))
		yPredVec.SetVec(i, yPred.At(i, 0))
	}

	return AUC(yTrueVec, yPredVec)
}

// ConfusionMatrix は二値分類の混同行列を表す
type ConfusionMatrix struct {
	TruePositives  int
	TrueNegatives  int
	FalsePositives int
	FalseNegatives int
}

// NewConfusionMatrix は予測ラベルと正解ラベルから混同行列を計算する
// ラベルは0または1でなければならない
func NewConfusionMatrix(yTrue, yPred *mat.VecDense) (*ConfusionMatrix, error) {
	if yTrue == nil || yPred == nil {
		return nil, errors.NewValueError("NewConfusionMatrix", "nil vector")
	}

	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError("NewConfusionMatrix", "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError("NewConfusionMatrix", n, yPred.Len(), 0)
	}

	cm := &ConfusionMatrix{}
	for i := 0; i < n; i++ {
		yt, yp := yTrue.AtVec(i), yPred.AtVec(i)
		if (yt != 0.0 && yt != 1.0) || (yp != 0.0 && yp != 1.0) {
			return nil, errors.NewValueError("NewConfusionMatrix", "labels must be binary (0 or 1)")
		}

		switch {
		case yt == 1.0 && yp == 1.0:
			cm.TruePositives++
		case yt == 0.0 && yp == 0.0:
			cm.TrueNegatives++
		case yt == 0.0 && yp == 1.0:
			cm.FalsePositives++
		default:
			cm.FalseNegatives++
		}
	}

	return cm, nil
}

// Precision は適合率 TP / (TP + FP) を返す
// 陽性と予測したサンプルが存在しない場合は未定義となり0を返す
func (cm *ConfusionMatrix) Precision() float64 {
	denom := cm.TruePositives + cm.FalsePositives
	if denom == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision",
			"no positive predictions", 0.0))
		return 0.0
	}
	return float64(cm.TruePositives) / float64(denom)
}

// Recall は再現率 TP / (TP + FN) を返す
// 陽性のサンプルが存在しない場合は未定義となり0を返す
func (cm *ConfusionMatrix) Recall() float64 {
	denom := cm.TruePositives + cm.FalseNegatives
	if denom == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall",
			"no positive labels", 0.0))
		return 0.0
	}
	return float64(cm.TruePositives) / float64(denom)
}
