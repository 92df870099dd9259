package cv

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"
)

// TemplateMatching 模板匹配器
//
// imSearch 和 imSource 需已按同一模式预处理。
type TemplateMatching struct {
	imSearch  gocv.Mat
	imSource  gocv.Mat
	threshold float64
}

// NewTemplateMatching 创建模板匹配器
func NewTemplateMatching(search, source gocv.Mat, threshold float64) *TemplateMatching {
	return &TemplateMatching{
		imSearch:  search,
		imSource:  source,
		threshold: threshold,
	}
}

// FindBestResult 计算全局最佳匹配
//
// 无论是否达到阈值都返回最佳得分，Found = Confidence >= threshold。
func (t *TemplateMatching) FindBestResult() (Probe, error) {
	// 检查图像尺寸
	if err := checkSourceLargerThanSearch(t.imSource, t.imSearch); err != nil {
		return Probe{}, err
	}
	if t.imSource.Type() != t.imSearch.Type() {
		return Probe{}, fmt.Errorf("图像类型不一致: %v != %v", t.imSource.Type(), t.imSearch.Type())
	}

	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(t.imSource, t.imSearch, &result, gocv.TmCcoeffNormed, mask)

	// 获取最佳匹配位置
	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)

	confidence := float64(maxVal)
	return Probe{
		Found: confidence >= t.threshold,
		Location: Region{
			X:      maxLoc.X,
			Y:      maxLoc.Y,
			Width:  t.imSearch.Cols(),
			Height: t.imSearch.Rows(),
		},
		Confidence: confidence,
	}, nil
}

// MatchTimed 执行匹配并返回耗时
func (t *TemplateMatching) MatchTimed() (Probe, time.Duration, error) {
	start := time.Now()
	probe, err := t.FindBestResult()
	return probe, time.Since(start), err
}

// checkSourceLargerThanSearch 检查源图像是否大于搜索图像
func checkSourceLargerThanSearch(source, search gocv.Mat) error {
	if source.Rows() < search.Rows() || source.Cols() < search.Cols() {
		return &ImageSizeError{
			SourceSize: [2]int{source.Cols(), source.Rows()},
			SearchSize: [2]int{search.Cols(), search.Rows()},
		}
	}
	return nil
}

// ImageSizeError 图像尺寸错误
type ImageSizeError struct {
	SourceSize [2]int
	SearchSize [2]int
}

func (e *ImageSizeError) Error() string {
	return fmt.Sprintf("搜索图像尺寸大于源图像: %dx%d > %dx%d",
		e.SearchSize[0], e.SearchSize[1], e.SourceSize[0], e.SourceSize[1])
}
