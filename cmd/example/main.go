package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/azhengyongqin/browser-use-gateway/internal/browseruse"
	"github.com/azhengyongqin/browser-use-gateway/internal/config"
	"github.com/azhengyongqin/browser-use-gateway/internal/logger"
	"github.com/azhengyongqin/browser-use-gateway/pkg/model"
	"github.com/azhengyongqin/browser-use-gateway/pkg/waiter"
	"github.com/azhengyongqin/browser-use-gateway/sdk"
)

const demoInstructions = "Open https://www.google.com and search for openai"

// 演示脚本：创建一个任务，逐条打印新出现的 step，结束后输出结果。
// 默认直接调用 Browser Use API；参数 via-gateway 时通过本地网关调用。
func main() {
	logger.Init(false, "info")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "via-gateway" {
		err = runViaGateway(ctx)
	} else {
		err = runDirect(ctx)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("示例运行失败")
	}
}

func runDirect(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := browseruse.NewClient(browseruse.Config{
		APIKey:  cfg.BrowserUse.APIKey,
		BaseURL: cfg.BrowserUse.BaseURL,
		Timeout: cfg.BrowserUse.Timeout,
	})

	created, err := client.RunTask(ctx, map[string]any{"task": demoInstructions})
	if err != nil {
		return err
	}
	fmt.Printf("Task created with ID: %s\n", created.ID)

	snap, err := waiter.Wait(ctx, created.ID, client.GetTask, waiter.Options{
		PollInterval: cfg.Wait.PollInterval,
		Timeout:      cfg.Wait.Timeout,
		Observer:     waiter.NewStepTracker(printStep).Observer(),
	})
	return printResult(snap, err)
}

func runViaGateway(ctx context.Context) error {
	client := sdk.NewClient("")

	created, err := client.RunTask(ctx, sdk.RunTaskRequest{Task: demoInstructions})
	if err != nil {
		return err
	}
	fmt.Printf("Task created with ID: %s\n", created.TaskID)

	opts := waiter.DefaultOptions()
	opts.Observer = waiter.NewStepTracker(printStep).Observer()
	snap, err := client.WaitForCompletion(ctx, created.TaskID, opts)
	return printResult(snap, err)
}

func printStep(step json.RawMessage) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, step, "", "    "); err != nil {
		fmt.Println(string(step))
		return
	}
	fmt.Println(buf.String())
}

func printResult(snap *model.TaskSnapshot, err error) error {
	if last, ok := waiter.LastSnapshot(err); ok {
		status := "unknown"
		if last != nil {
			status = string(last.Status)
		}
		fmt.Printf("Task did not finish in time, last status: %s\n", status)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Final output: %s\n", snap.OutputText())
	return nil
}
