package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/carousel/internal/config"
	"github.com/ivlev/carousel/internal/director"
	"github.com/ivlev/carousel/internal/hostws"
	"github.com/ivlev/carousel/internal/preview"
	"github.com/ivlev/carousel/internal/source"
	"github.com/ivlev/carousel/internal/system"
	"github.com/ivlev/carousel/internal/video"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	configPtr := flag.String("config", "configs/carousels.yaml", "Файл с конфигурациями каруселей")
	namePtr := flag.String("name", "", "Имя карусели (по умолчанию: первая в файле)")
	modePtr := flag.String("mode", "preview", "Режим: resolve, preview, serve")
	viewportPtr := flag.Int("viewport", 0, "Ширина окна для resolve и preview (по умолчанию: -width)")
	inputPtr := flag.String("input", "", "Путь к PDF или папке с изображениями (по умолчанию: самый свежий файл в input/pdf/)")
	tokensPtr := flag.String("tokens", "", "Слайды-QR через запятую вместо -input")
	scriptPtr := flag.String("script", "", "Сценарий навигации YAML (latest: самый свежий в scripts/)")
	saveScriptPtr := flag.Bool("save-script", false, "Сохранить сгенерированный сценарий в scripts/")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	framesPtr := flag.String("frames", "", "Папка для PNG-кадров вместо видео")
	durationPtr := flag.Float64("duration", 0, "Длительность превью в секундах (0: по сценарию или автоплею)")
	widthPtr := flag.Int("width", 1280, "Ширина")
	heightPtr := flag.Int("height", 720, "Высота")
	fpsPtr := flag.Int("fps", 30, "FPS")
	workersPtr := flag.Int("workers", system.DefaultWorkers(), "Потоки")
	dpiPtr := flag.Int("dpi", 150, "DPI")
	trimPtr := flag.String("trim", "", "Обрезка полей слайдов: contrast, none")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	addrPtr := flag.String("addr", ":8080", "Адрес HTTP-сервера для режима serve")

	flag.Parse()

	presets, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка загрузки конфигурации: %v", err)
	}
	for _, w := range presets.Warnings {
		log.Printf("[!] %s", w)
	}

	if *modePtr == "serve" {
		serve(presets, *addrPtr)
		return
	}

	name := *namePtr
	if name == "" {
		names := presets.Names()
		if len(names) == 0 {
			log.Fatalf("[-] Ошибка: в %s нет каруселей", *configPtr)
		}
		name = names[0]
	}
	cfg, ok := presets.Get(name)
	if !ok {
		log.Fatalf("[-] Карусель %q не найдена, доступны: %s", name, strings.Join(presets.SortedNames(), ", "))
	}

	viewport := *viewportPtr
	if viewport <= 0 {
		viewport = *widthPtr
	}

	switch *modePtr {
	case "resolve":
		out, err := config.Marshal(name, cfg.Effective(viewport))
		if err != nil {
			log.Fatalf("[-] Ошибка сериализации: %v", err)
		}
		fmt.Printf("[*] Карусель %s при ширине %dpx:\n", name, viewport)
		os.Stdout.Write(out)
	case "preview":
		runPreview(name, cfg, previewFlags{
			input:      *inputPtr,
			tokens:     *tokensPtr,
			script:     *scriptPtr,
			saveScript: *saveScriptPtr,
			output:     *outputPtr,
			frames:     *framesPtr,
			duration:   *durationPtr,
			viewport:   viewport,
			width:      *widthPtr,
			height:     *heightPtr,
			fps:        *fpsPtr,
			workers:    *workersPtr,
			dpi:        *dpiPtr,
			trim:       *trimPtr,
			quality:    *qualityPtr,
		})
	default:
		log.Fatalf("[-] Неизвестный режим: %s", *modePtr)
	}
}

type previewFlags struct {
	input, tokens, script string
	saveScript            bool
	output, frames        string
	duration              float64
	viewport              int
	width, height, fps    int
	workers, dpi          int
	trim                  string
	quality               int
}

func runPreview(name string, cfg config.Config, f previewFlags) {
	// Создаем нужные директории, если их нет
	for _, d := range []string{"input/pdf", "output", "scripts"} {
		os.MkdirAll(d, 0755)
	}

	src, label := openSource(f)
	defer src.Close()
	if src.PageCount() == 0 {
		log.Fatalf("[-] Ошибка: в источнике нет страниц или изображений")
	}
	if err := config.Validate(cfg, src.PageCount()); err != nil {
		log.Fatalf("[-] Конфигурация %s не подходит к источнику: %v", name, err)
	}

	script := loadScript(f.script)
	duration := f.duration
	if script == nil && !cfg.AutoplayEnabled() {
		if duration <= 0 {
			duration = float64(src.PageCount()+1) * 2
		}
		d := director.NewDirector(f.viewport, f.height)
		var err error
		script, err = d.Tour(name, src.PageCount(), duration)
		if err != nil {
			log.Fatalf("[-] Ошибка построения сценария: %v", err)
		}
		fmt.Printf("[*] Автоплей выключен, сгенерирован обход из %d шагов\n", len(script.Steps))
		if f.saveScript {
			path := director.ScriptPath("scripts", time.Now())
			if err := director.WriteScript(script, path); err != nil {
				log.Printf("[!] Не удалось сохранить сценарий: %v", err)
			} else {
				fmt.Printf("[*] Сценарий сохранен: %s\n", path)
			}
		}
	}
	if duration <= 0 {
		switch {
		case script != nil:
			duration = script.Duration() + cfg.Speed.Seconds() + 1
		default:
			duration = float64(src.PageCount()) * (cfg.AutoplayDelay + cfg.Speed).Seconds()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var out video.FrameWriter
	target := f.frames
	if f.frames != "" {
		seq, err := video.NewPNGSequence(f.frames)
		if err != nil {
			log.Fatalf("[-] Ошибка создания папки кадров: %v", err)
		}
		out = seq
	} else {
		target = f.output
		if target == "" {
			target = outputName(label)
		}
		encoderName, _ := system.GetBestH264Encoder()
		if encoderName != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
		}
		enc := &video.FFmpegEncoder{}
		w, err := enc.Open(ctx, target, video.Params{
			Width:   f.width,
			Height:  f.height,
			FPS:     f.fps,
			Encoder: encoderName,
			Quality: f.quality,
		})
		if err != nil {
			log.Fatalf("[-] Ошибка запуска FFmpeg: %v", err)
		}
		out = w
	}

	if script != nil && script.Viewport == nil {
		script.Viewport = &director.Viewport{Width: f.viewport, Height: f.height}
	}

	project := preview.NewProject(cfg, src, script, out, preview.Options{
		Width:    f.width,
		Height:   f.height,
		FPS:      f.fps,
		Duration: time.Duration(duration * float64(time.Second)),
		DPI:      f.dpi,
		Workers:  f.workers,
		Trim:     f.trim,
		Logger:   log.New(os.Stderr, "", log.LstdFlags),
	})
	stats, err := project.Run(ctx)
	if err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}
	fmt.Print(stats.Report())
	fmt.Printf("[+++] Успех! Результат: %s\n", target)
}

func openSource(f previewFlags) (source.Source, string) {
	if f.tokens != "" {
		src, err := source.NewTokenSource(strings.Split(f.tokens, ","), source.DefaultTokenSize)
		if err != nil {
			log.Fatalf("[-] Ошибка инициализации источника: %v", err)
		}
		return src, "tokens"
	}

	inputPath := f.input
	if inputPath == "" {
		latest, err := system.FindLatestPDF("input/pdf")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите PDF в input/pdf/ или задайте -tokens", err)
		}
		inputPath = latest
		fmt.Printf("[*] Выбран файл: %s\n", inputPath)
	}

	var src source.Source
	var err error
	if strings.HasSuffix(strings.ToLower(inputPath), ".pdf") {
		src, err = source.NewFitzPDFSource(inputPath)
	} else {
		src, err = source.NewImageSource(inputPath)
	}
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	return src, inputPath
}

func loadScript(path string) *director.Script {
	if path == "" {
		return nil
	}
	if path == "latest" {
		latest, err := director.FindLatestScript("scripts")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		path = latest
	}
	script, err := director.ReadScript(path)
	if err != nil {
		log.Fatalf("[-] Ошибка чтения сценария: %v", err)
	}
	fmt.Printf("[*] Сценарий: %s (%d шагов, %.1fs)\n", path, len(script.Steps), script.Duration())
	return script
}

func outputName(label string) string {
	baseName := filepath.Base(label)
	nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	cleanName := strings.ReplaceAll(nameOnly, " ", "_")
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
}

func serve(presets *config.Presets, addr string) {
	router := hostws.SetupRoutes(hostws.NewHandler(presets,
		hostws.WithLogger(log.New(os.Stderr, "", log.LstdFlags))))
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("[*] Сервер каруселей (%d шт.) слушает %s\n", presets.Len(), addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[-] Ошибка сервера: %v", err)
	}
}
