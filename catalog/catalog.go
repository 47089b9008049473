package catalog

import (
	"embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogFS embed.FS

type yamlCatalog struct {
	Version int     `yaml:"version"`
	Grades  []Grade `yaml:"grades"`
}

// Catalog 年级 → 题型 → 规则的只读表，加载后不再修改，可并发读取
type Catalog struct {
	grades []Grade
	index  map[string]int
	byID   map[string]map[string]int
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default 返回内置的年级题型表（进程内只解析一次）
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		b, err := catalogFS.ReadFile("catalog.yaml")
		if err != nil {
			defaultErr = fmt.Errorf("read embedded catalog: %w", err)
			return
		}
		defaultCat, defaultErr = Parse(b)
	})
	return defaultCat, defaultErr
}

// LoadFile 从外部 YAML 文件加载题型表，path 为空时使用内置表
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(b)
}

// Parse 解析并校验 YAML 题型表
func Parse(b []byte) (*Catalog, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return build(doc.Grades)
}

// New 由内存中的年级列表构建题型表，常用于测试
func New(grades []Grade) (*Catalog, error) {
	cp := make([]Grade, len(grades))
	for i, g := range grades {
		cp[i] = g
		cp[i].Categories = append([]Category(nil), g.Categories...)
	}
	return build(cp)
}

func build(grades []Grade) (*Catalog, error) {
	if err := validate(grades); err != nil {
		return nil, err
	}
	c := &Catalog{
		grades: grades,
		index:  make(map[string]int, len(grades)),
		byID:   make(map[string]map[string]int, len(grades)),
	}
	for gi := range c.grades {
		g := &c.grades[gi]
		c.index[g.Key] = gi
		ids := make(map[string]int, len(g.Categories))
		for ci := range g.Categories {
			cat := &g.Categories[ci]
			// 规则的 kind 跟随所属题型
			cat.Rule.Kind = cat.Kind
			ids[cat.ID] = ci
		}
		c.byID[g.Key] = ids
	}
	return c, nil
}

// Grades 按配置顺序返回全部年级（不含题型列表）
func (c *Catalog) Grades() []Grade {
	out := make([]Grade, 0, len(c.grades))
	for _, g := range c.grades {
		g.Categories = nil
		out = append(out, g)
	}
	return out
}

// Grade 返回完整的年级配置
func (c *Catalog) Grade(key string) (Grade, bool) {
	i, ok := c.index[key]
	if !ok {
		return Grade{}, false
	}
	g := c.grades[i]
	g.Categories = append([]Category(nil), g.Categories...)
	return g, true
}

// Category 按 (gradeKey, categoryID) 查找题型
func (c *Catalog) Category(gradeKey, categoryID string) (Category, bool) {
	ids, ok := c.byID[gradeKey]
	if !ok {
		return Category{}, false
	}
	ci, ok := ids[categoryID]
	if !ok {
		return Category{}, false
	}
	return c.grades[c.index[gradeKey]].Categories[ci], true
}

// LookupRule 返回 (gradeKey, categoryID) 对应的出题规则
func (c *Catalog) LookupRule(gradeKey, categoryID string) (Rule, bool) {
	cat, ok := c.Category(gradeKey, categoryID)
	if !ok {
		return Rule{}, false
	}
	return cat.Rule, true
}

// ListCategories 按配置顺序返回年级下的题型，未知年级返回 nil
func (c *Catalog) ListCategories(gradeKey string) []Category {
	i, ok := c.index[gradeKey]
	if !ok {
		return nil
	}
	return append([]Category(nil), c.grades[i].Categories...)
}
