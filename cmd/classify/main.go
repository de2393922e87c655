// Command classify はローカルの画像ファイルを Real/Fake 判定し、1ファイル1行のJSONで出力します。
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"deepfake_backend/internal/app/di"
	"deepfake_backend/internal/feature/detection/domain/entity"
	"deepfake_backend/internal/feature/detection/usecase"
	"deepfake_backend/internal/platform/config"
)

// line は1ファイル分の出力です。
type line struct {
	File   string                       `json:"file"`
	Result *entity.ClassificationResult `json:"result,omitempty"`
	Error  string                       `json:"error,omitempty"`
}

func main() {
	cfg := config.Load()
	weights := flag.String("weights", cfg.WeightsPath, "path to the Meso4 weight artifact")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-weights path] <image>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	model, _, err := di.NewModel(*weights)
	if err != nil {
		log.Fatalf("[FATAL] failed to load weights from %s: %v", *weights, err)
	}

	uc := usecase.NewDetectionUsecase(model)
	if failed := run(context.Background(), uc, flag.Args(), os.Stdout); failed > 0 {
		os.Exit(1)
	}
}

// classifier は run が利用する判定処理です。
type classifier interface {
	Classify(ctx context.Context, imageData []byte) (*entity.ClassificationResult, error)
}

// run は各ファイルを判定して w に書き出し、失敗したファイル数を返します。
func run(ctx context.Context, uc classifier, paths []string, w io.Writer) int {
	enc := json.NewEncoder(w)
	failed := 0
	for _, p := range paths {
		out := line{File: p}
		data, err := os.ReadFile(p)
		if err == nil {
			out.Result, err = uc.Classify(ctx, data)
		}
		if err != nil {
			out.Error = err.Error()
			failed++
		}
		if err := enc.Encode(out); err != nil {
			log.Printf("[ERROR] failed to write result for %s: %v", p, err)
			failed++
		}
	}
	return failed
}
