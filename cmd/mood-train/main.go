// Command mood-train builds the mood predictor: it generates diary-style
// sentences with a local LLM, labels them with danceability and energy,
// and trains the network on the labeled dataset.
//
// The three steps run independently so each can be re-run on its own:
//
//	mood-train -generate -count 6000
//	mood-train -label
//	mood-train -train
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/calebtn/go-mood-matcher/internal/embedding"
	"github.com/calebtn/go-mood-matcher/internal/mood"
	"github.com/calebtn/go-mood-matcher/internal/traingen"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		generate = flag.Bool("generate", false, "generate diary sentences with the LLM")
		label    = flag.Bool("label", false, "label generated sentences with danceability and energy")
		train    = flag.Bool("train", false, "train the mood predictor on the labeled dataset")

		count         = flag.Int("count", 6000, "number of sentences to generate")
		sentencesPath = flag.String("sentences", "model/sentences.txt", "generated sentences file")
		datasetPath   = flag.String("dataset", "model/trainingData.txt", "labeled dataset file")
		vocabPath     = flag.String("vocab", "model/embeddings.txt", "word embeddings file")
		modelPath     = flag.String("model", "model/moodPredictor.json", "trained model output file")

		ollamaURL   = flag.String("ollama", "", "Ollama base URL (default local instance)")
		ollamaModel = flag.String("ollama-model", "", "Ollama model name")

		epochs = flag.Int("epochs", 0, "training epochs (0 for default)")
		seed   = flag.Int64("seed", 0, "random seed (0 for default)")
	)
	flag.Parse()

	if !*generate && !*label && !*train {
		return fmt.Errorf("choose at least one of -generate, -label, -train")
	}

	ctx := context.Background()

	if *generate {
		client := traingen.NewClient(*ollamaURL, *ollamaModel)
		if err := generateSentences(ctx, client, *count, *sentencesPath); err != nil {
			return fmt.Errorf("generating sentences: %w", err)
		}
	}
	if *label {
		client := traingen.NewClient(*ollamaURL, *ollamaModel)
		if err := labelSentences(ctx, client, *sentencesPath, *datasetPath); err != nil {
			return fmt.Errorf("labeling sentences: %w", err)
		}
	}
	if *train {
		if err := trainPredictor(*vocabPath, *datasetPath, *modelPath, *epochs, *seed); err != nil {
			return fmt.Errorf("training predictor: %w", err)
		}
	}
	return nil
}

// generateSentences writes LLM-generated sentences to path, one per line,
// flushing each batch so an interrupted run keeps its progress.
func generateSentences(ctx context.Context, client *traingen.Client, count int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	written := 0
	err = client.GenerateSentences(ctx, count, func(batch []string) error {
		for _, sentence := range batch {
			if _, err := fmt.Fprintln(w, sentence); err != nil {
				return err
			}
		}
		written += len(batch)
		log.Printf("generated %d/%d sentences", written, count)
		return w.Flush()
	})
	if err != nil {
		return err
	}
	return w.Flush()
}

// labelSentences asks the LLM for danceability and energy of every sentence
// and appends "sentence,danceability,energy" lines to the dataset. Sentences
// the LLM cannot label cleanly are skipped.
func labelSentences(ctx context.Context, client *traingen.Client, sentencesPath, datasetPath string) error {
	in, err := os.Open(sentencesPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(datasetPath)
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	labeled, skipped := 0, 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		sentence := strings.TrimSpace(scanner.Text())
		if sentence == "" {
			continue
		}

		danceability, energy, err := client.LabelSentence(ctx, sentence)
		if err != nil {
			log.Printf("skipping %q: %v", sentence, err)
			skipped++
			continue
		}

		fmt.Fprintf(w, "%s,%.2f,%.2f\n", sentence, danceability, energy)
		labeled++
		if labeled%100 == 0 {
			log.Printf("labeled %d sentences (%d skipped)", labeled, skipped)
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	log.Printf("done: %d labeled, %d skipped", labeled, skipped)
	return w.Flush()
}

// trainPredictor encodes every dataset sentence with the word embeddings,
// trains the network, and saves it as JSON.
func trainPredictor(vocabPath, datasetPath, modelPath string, epochs int, seed int64) error {
	vocab, err := embedding.LoadVocabulary(vocabPath)
	if err != nil {
		return fmt.Errorf("loading vocabulary: %w", err)
	}
	log.Printf("loaded vocabulary: %d words, %d dimensions", vocab.Len(), vocab.Dim())

	samples, err := mood.LoadDataset(datasetPath)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	log.Printf("loaded %d training samples", len(samples))

	x := make([][]float64, len(samples))
	y := make([][2]float64, len(samples))
	for i, s := range samples {
		x[i] = vocab.Encode(s.Sentence)
		y[i] = [2]float64{s.Danceability, s.Energy}
	}

	network, result, err := mood.Train(x, y, mood.TrainConfig{
		Epochs: epochs,
		Seed:   seed,
		Logf:   log.Printf,
	})
	if err != nil {
		return err
	}

	if n := len(result.TrainLoss); n > 0 {
		log.Printf("final loss: train %.4f, validation %.4f",
			result.TrainLoss[n-1], result.ValLoss[n-1])
	}

	if err := network.Save(modelPath); err != nil {
		return fmt.Errorf("saving model: %w", err)
	}
	log.Printf("saved model to %s", modelPath)
	return nil
}
