// Package ml implements the transaction description classifier: a TF-IDF
// vectorizer feeding a multinomial logistic regression. Prediction failures
// are absorbed, never propagated, so a missing or broken model can only ever
// leave transactions uncategorized.
package ml

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// MinTrainingSamples is the floor below which training is rejected outright.
const MinTrainingSamples = 10

// ErrInsufficientData is returned when fewer than MinTrainingSamples labeled
// samples are supplied. No partial model is produced.
var ErrInsufficientData = errors.New("not enough training data")

const (
	trainSeed = 42
	epochs    = 300
	learnRate = 0.5
	l2Penalty = 1e-4
	testRatio = 0.2
)

// TrainResult reports accuracy on the held-out split alongside the training
// split so overfitting is visible to the caller.
type TrainResult struct {
	TrainAccuracy  float64 `json:"train_accuracy"`
	TestAccuracy   float64 `json:"test_accuracy"`
	SamplesTrained int     `json:"samples_trained"`
	SamplesTested  int     `json:"samples_tested"`
}

type Prediction struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

type Feature struct {
	Term   string  `json:"feature"`
	Weight float64 `json:"importance"`
}

// Classifier is the capability set every category classifier implementation
// must honor. Swap-in implementations select by construction, not by runtime
// type inspection.
type Classifier interface {
	Train(descriptions, labels []string) (*TrainResult, error)
	Predict(description string) (string, float64)
	PredictBatch(descriptions []string) []Prediction
	Save() error
	Load() (bool, error)
	FeatureImportance(category string, topN int) []Feature
}

// modelArtifact is the gob-persisted fitted model: vocabulary, per-class
// weight rows and biases.
type modelArtifact struct {
	Vocabulary  map[string]int
	IDF         []float64
	Classes     []string
	Weights     []float64 // len(Classes) x NumFeatures, row-major
	Bias        []float64
	NumFeatures int
}

// LinearClassifier is the concrete Classifier: TF-IDF features with a
// softmax-regression decision layer fit by batch gradient descent.
type LinearClassifier struct {
	path string

	mu    sync.RWMutex
	model *modelArtifact
}

func NewLinearClassifier(modelPath string) *LinearClassifier {
	return &LinearClassifier{path: modelPath}
}

// Train fits a fresh model on an 80/20 split with a fixed shuffle seed for
// reproducibility, replaces the in-memory model, and reports accuracy on
// both splits. The caller decides whether to Save the result.
func (c *LinearClassifier) Train(descriptions, labels []string) (*TrainResult, error) {
	if len(descriptions) != len(labels) {
		return nil, fmt.Errorf("mismatched training data: %d descriptions, %d labels", len(descriptions), len(labels))
	}
	if len(descriptions) < MinTrainingSamples {
		return nil, fmt.Errorf("%w: need at least %d samples, got %d", ErrInsufficientData, MinTrainingSamples, len(descriptions))
	}

	rng := rand.New(rand.NewSource(trainSeed))
	perm := rng.Perm(len(descriptions))

	testSize := int(float64(len(descriptions)) * testRatio)
	if testSize < 1 {
		testSize = 1
	}

	var trainDocs, testDocs, trainLabels, testLabels []string
	for i, idx := range perm {
		if i < testSize {
			testDocs = append(testDocs, descriptions[idx])
			testLabels = append(testLabels, labels[idx])
		} else {
			trainDocs = append(trainDocs, descriptions[idx])
			trainLabels = append(trainLabels, labels[idx])
		}
	}

	vectorizer := &Vectorizer{}
	vectorizer.Fit(trainDocs)

	classes := distinctSorted(trainLabels)
	classIndex := make(map[string]int, len(classes))
	for i, class := range classes {
		classIndex[class] = i
	}

	weights, bias := fit(vectorizer, trainDocs, trainLabels, classIndex)

	model := &modelArtifact{
		Vocabulary:  vectorizer.Vocabulary,
		IDF:         vectorizer.IDF,
		Classes:     classes,
		Weights:     weights,
		Bias:        bias,
		NumFeatures: len(vectorizer.IDF),
	}

	c.mu.Lock()
	c.model = model
	c.mu.Unlock()

	return &TrainResult{
		TrainAccuracy:  accuracy(model, trainDocs, trainLabels),
		TestAccuracy:   accuracy(model, testDocs, testLabels),
		SamplesTrained: len(trainDocs),
		SamplesTested:  len(testDocs),
	}, nil
}

// fit runs batch gradient descent on the softmax cross-entropy objective
// with a small L2 penalty.
func fit(v *Vectorizer, docs, labels []string, classIndex map[string]int) ([]float64, []float64) {
	n := len(docs)
	d := len(v.IDF)
	k := len(classIndex)

	flat := make([]float64, n*d)
	for i, doc := range docs {
		copy(flat[i*d:(i+1)*d], v.Transform(doc))
	}
	x := mat.NewDense(n, d, flat)

	w := mat.NewDense(k, d, nil)
	bias := make([]float64, k)

	probs := mat.NewDense(n, k, nil)
	grad := mat.NewDense(k, d, nil)

	for epoch := 0; epoch < epochs; epoch++ {
		// Forward pass: class probabilities for every sample.
		probs.Mul(x, w.T())
		for i := 0; i < n; i++ {
			row := probs.RawRowView(i)
			for j := range row {
				row[j] += bias[j]
			}
			softmaxInPlace(row)
		}

		// probs becomes the residual (P - Y).
		for i, label := range labels {
			probs.Set(i, classIndex[label], probs.At(i, classIndex[label])-1)
		}

		grad.Mul(probs.T(), x)
		grad.Scale(1/float64(n), grad)

		var reg mat.Dense
		reg.Scale(l2Penalty, w)
		grad.Add(grad, &reg)

		var step mat.Dense
		step.Scale(learnRate, grad)
		w.Sub(w, &step)

		for j := 0; j < k; j++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += probs.At(i, j)
			}
			bias[j] -= learnRate * sum / float64(n)
		}
	}

	weights := make([]float64, k*d)
	copy(weights, w.RawMatrix().Data)
	return weights, bias
}

func softmaxInPlace(scores []float64) {
	max := math.Inf(-1)
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	var sum float64
	for i, s := range scores {
		scores[i] = math.Exp(s - max)
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
}

func accuracy(m *modelArtifact, docs, labels []string) float64 {
	if len(docs) == 0 {
		return 0
	}
	var correct int
	for i, doc := range docs {
		if class, _ := m.predict(doc); class == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(docs))
}

func (m *modelArtifact) predict(description string) (string, float64) {
	v := &Vectorizer{Vocabulary: m.Vocabulary, IDF: m.IDF}
	x := v.Transform(description)

	scores := make([]float64, len(m.Classes))
	for j := range m.Classes {
		row := m.Weights[j*m.NumFeatures : (j+1)*m.NumFeatures]
		var dot float64
		for i, xi := range x {
			dot += row[i] * xi
		}
		scores[j] = dot + m.Bias[j]
	}
	softmaxInPlace(scores)

	best := 0
	for j := range scores {
		if scores[j] > scores[best] {
			best = j
		}
	}
	return m.Classes[best], scores[best]
}

// Predict returns the best category and its confidence, or ("", 0) when no
// model is loaded or prediction fails for any reason.
func (c *LinearClassifier) Predict(description string) (category string, confidence float64) {
	defer func() {
		if r := recover(); r != nil {
			category, confidence = "", 0
		}
	}()

	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()

	if model == nil {
		return "", 0
	}
	return model.predict(description)
}

// PredictBatch is semantically per-item Predict with the same failure policy.
func (c *LinearClassifier) PredictBatch(descriptions []string) []Prediction {
	predictions := make([]Prediction, len(descriptions))
	for i, desc := range descriptions {
		category, confidence := c.Predict(desc)
		predictions[i] = Prediction{Category: category, Confidence: confidence}
	}
	return predictions
}

// Save persists the fitted model artifact to the configured path.
func (c *LinearClassifier) Save() error {
	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()

	if model == nil {
		return errors.New("no model to save: train or load a model first")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(model); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return nil
}

// Load restores a saved model. A missing artifact is not an error, just
// "not ready": (false, nil).
func (c *LinearClassifier) Load() (bool, error) {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	var model modelArtifact
	if err := gob.NewDecoder(f).Decode(&model); err != nil {
		return false, fmt.Errorf("decode model: %w", err)
	}

	c.mu.Lock()
	c.model = &model
	c.mu.Unlock()
	return true, nil
}

// FeatureImportance returns the topN highest-weighted vocabulary terms on
// the category's decision boundary. Empty when the model is absent or the
// category unknown.
func (c *LinearClassifier) FeatureImportance(category string, topN int) []Feature {
	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()

	if model == nil || topN <= 0 {
		return nil
	}

	classIdx := -1
	for j, class := range model.Classes {
		if class == category {
			classIdx = j
			break
		}
	}
	if classIdx == -1 {
		return nil
	}

	terms := make([]string, model.NumFeatures)
	for term, i := range model.Vocabulary {
		terms[i] = term
	}

	row := model.Weights[classIdx*model.NumFeatures : (classIdx+1)*model.NumFeatures]
	indices := make([]int, len(row))
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool { return row[indices[a]] > row[indices[b]] })

	if topN > len(indices) {
		topN = len(indices)
	}
	features := make([]Feature, 0, topN)
	for _, i := range indices[:topN] {
		features = append(features, Feature{Term: terms[i], Weight: row[i]})
	}
	return features
}

// Info reports the in-memory model's classes and feature count. ok is false
// when no model has been trained or loaded.
func (c *LinearClassifier) Info() (classes []string, features int, ok bool) {
	c.mu.RLock()
	model := c.model
	c.mu.RUnlock()

	if model == nil {
		return nil, 0, false
	}
	classes = make([]string, len(model.Classes))
	copy(classes, model.Classes)
	return classes, model.NumFeatures, true
}

func distinctSorted(labels []string) []string {
	set := make(map[string]struct{})
	for _, l := range labels {
		set[l] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
