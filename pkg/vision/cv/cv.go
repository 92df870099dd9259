// Package cv 提供基于 gocv 的模板匹配
//
// 截图和模板在匹配前统一预处理为同一种表示（彩色、灰度或二值化灰度），
// 以抵消不同显卡渲染造成的亮度和色彩差异；相似度使用 TM_CCOEFF_NORMED。
//
// 基本用法:
//
//	tmpl := cv.NewTemplate("images/inventory_full.png",
//	    cv.WithTemplateMode(cv.ModeBinary),
//	    cv.WithTemplateThreshold(0.7),
//	)
//	screen := cv.NewScreen(mat)
//	defer screen.Close()
//	probe, err := tmpl.MatchIn(screen)
//	fmt.Printf("found=%v confidence=%.3f\n", probe.Found, probe.Confidence)
package cv
