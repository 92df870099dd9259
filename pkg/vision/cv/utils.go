package cv

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"
)

// BinaryThreshold 二值化阈值，高于此值的像素置为 255
const BinaryThreshold = 200

// ReadImage 读取图像文件
func ReadImage(filename string) (gocv.Mat, error) {
	mat := gocv.IMRead(filename, gocv.IMReadColor)
	if mat.Empty() {
		return mat, fmt.Errorf("无法读取图像: %s", filename)
	}
	return mat, nil
}

// ReadImageGray 读取灰度图像
func ReadImageGray(filename string) (gocv.Mat, error) {
	mat := gocv.IMRead(filename, gocv.IMReadGrayScale)
	if mat.Empty() {
		return mat, fmt.Errorf("无法读取图像: %s", filename)
	}
	return mat, nil
}

// WriteImage 保存图像文件
func WriteImage(filename string, img gocv.Mat) error {
	// 确保目录存在
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	if ok := gocv.IMWrite(filename, img); !ok {
		return fmt.Errorf("保存图像失败: %s", filename)
	}
	return nil
}

// ToGray 转换为灰度图
func ToGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return dst
}

// Binarize 灰度化后按 BinaryThreshold 二值化
func Binarize(src gocv.Mat) gocv.Mat {
	gray := ToGray(src)
	defer gray.Close()

	dst := gocv.NewMat()
	gocv.Threshold(gray, &dst, BinaryThreshold, 255, gocv.ThresholdBinary)
	return dst
}

// Prepare 按模式预处理图像，返回新的 Mat
func Prepare(src gocv.Mat, mode Mode) gocv.Mat {
	switch mode {
	case ModeColor:
		if src.Channels() == 1 {
			dst := gocv.NewMat()
			gocv.CvtColor(src, &dst, gocv.ColorGrayToBGR)
			return dst
		}
		return src.Clone()
	case ModeGray:
		return ToGray(src)
	default:
		return Binarize(src)
	}
}

// CropImage 裁剪图像
// rect: [xMin, yMin, xMax, yMax]
func CropImage(img gocv.Mat, rect [4]int) gocv.Mat {
	xMin, yMin, xMax, yMax := rect[0], rect[1], rect[2], rect[3]

	// 边界检查
	xMin = max(xMin, 0)
	yMin = max(yMin, 0)
	xMax = min(xMax, img.Cols())
	yMax = min(yMax, img.Rows())

	region := img.Region(image.Rect(xMin, yMin, xMax, yMax))
	defer region.Close()
	return region.Clone()
}

// ImageToMat 将 image.Image 转换为 BGR gocv.Mat
func ImageToMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("图像转换失败: %w", err)
	}
	// 转换为 BGR（OpenCV 默认格式）
	dst := gocv.NewMat()
	gocv.CvtColor(mat, &dst, gocv.ColorRGBToBGR)
	mat.Close()
	return dst, nil
}
