package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/velumi/img2svg/internal/config"
	"github.com/velumi/img2svg/internal/domain"
	"github.com/velumi/img2svg/internal/infrastructure/recraft"
	"github.com/velumi/img2svg/internal/repository"
	"github.com/velumi/img2svg/internal/service"
	"github.com/velumi/img2svg/internal/web"
)

func main() {
	// Parse command line flags
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	runGenerate := flag.Bool("generate", false, "Generate an image from a prompt and vectorize it")
	runVectorize := flag.Bool("vectorize", false, "Vectorize an existing image file")
	runServe := flag.Bool("serve", false, "Start the web UI")
	flag.Parse()

	// Configure logging
	if *verbose {
		log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
		log.Println("Verbose logging enabled")
	} else {
		log.SetFlags(log.Ldate | log.Ltime)
	}

	if !*runGenerate && !*runVectorize && !*runServe {
		log.Fatal("Please specify at least one workflow to run: -generate, -vectorize, or -serve")
	}

	// Load configuration
	log.Println("Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	log.Println("Configuration loaded successfully")

	repo, err := repository.NewFileArtifactRepository(cfg.UploadsDir, cfg.VectorsDir)
	if err != nil {
		log.Fatalf("Failed to prepare output directories: %v", err)
	}

	selector := service.NewSelector(cfg)
	vectorizer := recraft.NewClient(cfg.RecraftAPIToken, cfg.HTTPTimeout)

	workflow, err := service.NewWorkflow(cfg, selector, vectorizer, repo)
	if err != nil {
		log.Fatalf("Failed to initialize workflow: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating shutdown...", sig)
		cancel()
	}()

	switch {
	case *runServe:
		if err := runWebUI(ctx, cfg, workflow, repo); err != nil {
			log.Fatalf("Web UI failed: %v", err)
		}
	case *runGenerate:
		if err := runGenerateWorkflow(ctx, selector, workflow); err != nil {
			log.Fatalf("ERROR: %v", err)
		}
	case *runVectorize:
		if err := runVectorizeWorkflow(ctx, workflow); err != nil {
			log.Fatalf("ERROR: %v", err)
		}
	}
}

// runWebUI serves the browser interface and, when retention is configured,
// sweeps old artifacts on a schedule.
func runWebUI(ctx context.Context, cfg *config.Config, workflow *service.Workflow, repo *repository.FileArtifactRepository) error {
	server, err := web.NewServer(cfg, workflow)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if cfg.Retention.MaxAge > 0 {
		c := cron.New()
		_, err := c.AddFunc(cfg.Retention.Schedule, func() {
			removed, err := repo.RemoveOlderThan(cfg.Retention.MaxAge)
			if err != nil {
				log.Printf("[CRON] Retention sweep failed: %v", err)
				return
			}
			log.Printf("[CRON] Retention sweep removed %d artifacts older than %s", removed, cfg.Retention.MaxAge)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule retention sweep: %w", err)
		}
		c.Start()
		defer c.Stop()
		log.Printf("Retention sweep scheduled (%s, max age %s)", cfg.Retention.Schedule, cfg.Retention.MaxAge)
	}

	return server.ListenAndServe(ctx)
}

// runGenerateWorkflow collects generation options interactively, generates
// an image and vectorizes it.
func runGenerateWorkflow(ctx context.Context, selector *service.Selector, workflow *service.Workflow) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Available API providers:")
	fmt.Println("1. Auto (use first available provider)")
	fmt.Println("2. Replicate")
	fmt.Println("3. Fal.ai")
	fmt.Println("4. OpenAI (GPT-Image-1/DALL-E 3)")
	provider := domain.ProviderFromChoice(prompt(reader, "Choose an API provider (1-4, default: 1): "))

	// Fail early if the chosen provider has no credential.
	gen, err := selector.Select(provider)
	if err != nil {
		return err
	}
	fmt.Printf("Using %s as the API provider\n", gen.Name())

	promptText := prompt(reader, "Enter a prompt to generate an image: ")
	if promptText == "" {
		return fmt.Errorf("no prompt provided")
	}

	fmt.Println()
	fmt.Println("Available aspect ratios:")
	fmt.Println("1. Square (1:1)")
	fmt.Println("2. Landscape (16:9)")
	fmt.Println("3. Portrait (9:16)")
	fmt.Println("4. Landscape (3:2)")
	fmt.Println("5. Portrait (2:3)")
	fmt.Println("6. Custom")
	aspectChoice := prompt(reader, "Choose an aspect ratio (1-6, default: 1): ")

	var aspectRatio string
	if aspectChoice == "6" {
		aspectRatio = prompt(reader, "Enter custom aspect ratio (e.g., '4:3', '5:4'): ")
		if !domain.ValidAspectRatio(aspectRatio) {
			fmt.Printf("Invalid custom ratio %q, using %s\n", aspectRatio, domain.DefaultAspectRatio)
			aspectRatio = domain.DefaultAspectRatio
		}
	} else {
		aspectRatio = domain.AspectRatioFromChoice(aspectChoice)
	}

	fmt.Println()
	fmt.Println("Magic Prompt options:")
	fmt.Println("1. Auto - Automatically optimize the prompt")
	fmt.Println("2. On - Always optimize the prompt")
	fmt.Println("3. Off - Use the prompt as-is")
	magicPrompt := domain.MagicPromptFromChoice(prompt(reader, "Choose a Magic Prompt option (1-3, default: 1): "))

	fmt.Println()
	fmt.Println("Style Type options:")
	fmt.Println("1. Auto")
	fmt.Println("2. General")
	fmt.Println("3. Realistic")
	fmt.Println("4. Design")
	fmt.Println("5. None")
	style := domain.StyleFromChoice(prompt(reader, "Choose a Style Type (1-5, default: 1): "))

	req := domain.GenerationRequest{
		Prompt:      promptText,
		AspectRatio: aspectRatio,
		MagicPrompt: magicPrompt,
		Style:       style,
		Provider:    provider,
	}

	fmt.Println()
	fmt.Printf("Generating image with %s...\n", gen.Name())
	fmt.Printf("Prompt: %s\n", req.Prompt)
	fmt.Printf("Aspect Ratio: %s\n", req.AspectRatio)
	fmt.Printf("Magic Prompt: %s\n", req.MagicPrompt)
	fmt.Printf("Style Type: %s\n", req.Style)

	result, imagePath, vec, err := workflow.GenerateAndVectorize(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("Image generated with %s (%s) and saved to %s\n", result.Provider, result.Model, imagePath)
	fmt.Printf("SVG URL: %s\n", vec.SVGURL)
	fmt.Printf("SVG saved to %s\n", vec.LocalPath)
	fmt.Println("Process completed successfully!")
	return nil
}

// runVectorizeWorkflow prompts for an image path and vectorizes it.
func runVectorizeWorkflow(ctx context.Context, workflow *service.Workflow) error {
	reader := bufio.NewReader(os.Stdin)

	path := prompt(reader, "Enter the path to your image file: ")
	if path == "" {
		return fmt.Errorf("no image path provided")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("image file not found: %s", path)
	}

	fmt.Println("Vectorizing image...")
	uploadPath, vec, err := workflow.VectorizeFile(ctx, path)
	if err != nil {
		return err
	}

	fmt.Printf("Input copied to %s\n", uploadPath)
	fmt.Printf("Vectorization successful! SVG URL: %s\n", vec.SVGURL)
	fmt.Printf("SVG saved to %s\n", vec.LocalPath)
	fmt.Println("Process completed successfully!")
	return nil
}

// prompt reads a single trimmed line after printing the given label.
func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return strings.TrimSpace(line)
	}
	return strings.TrimSpace(line)
}
