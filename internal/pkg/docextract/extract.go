package docextract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"k8s.io/klog/v2"
)

// 支持直接读取文本的扩展名
var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".json": true,
	".yaml": true,
	".yml":  true,
	".csv":  true,
	".log":  true,
}

// Supported 判断文件名是否为可提取的文本类型
func Supported(fileName string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(fileName))]
}

// ExtractText 读取文件并返回其文本内容
// 不支持的类型或非 UTF-8 内容返回错误，调用方负责落占位文案
func ExtractText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !textExtensions[ext] {
		return "", fmt.Errorf("unsupported document type: %s", ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document is not valid UTF-8 text: %s", filepath.Base(path))
	}

	klog.V(6).Infof("提取文档内容: path=%s, bytes=%d", path, len(data))
	return string(data), nil
}

// ExtractBytes 从内存中的上传内容提取文本，语义同 ExtractText
func ExtractBytes(fileName string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !textExtensions[ext] {
		return "", fmt.Errorf("unsupported document type: %s", ext)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document is not valid UTF-8 text: %s", fileName)
	}
	return string(data), nil
}
