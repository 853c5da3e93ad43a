package sdk

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var (
	envLoaded bool
	envLoadMu sync.Mutex
)

// LoadEnv 从当前目录或上两级目录加载第一个找到的 .env 文件。
// 已存在的环境变量不会被覆盖；没有 .env 文件不算错误。
func LoadEnv() error {
	envLoadMu.Lock()
	defer envLoadMu.Unlock()

	if envLoaded {
		return nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	path := findEnvFile(wd, 3)
	if path == "" {
		envLoaded = true
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return err
	}

	log.Printf("[browser-use-sdk] 已加载环境变量文件: %s", path)
	envLoaded = true
	return nil
}

// findEnvFile 从 dir 开始向上查找 .env，最多 depth 层
func findEnvFile(dir string, depth int) string {
	for i := 0; i < depth; i++ {
		p := filepath.Join(dir, ".env")
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
