package csvparse

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		coercion Coercion
		want     []map[string]any
		wantErr  bool
	}{
		{
			name:  "commas inside quoted strings",
			input: "name,description\n\"Alex, Jr.\",\"This is Alex, thanks.\"",
			want: []map[string]any{
				{"name": "Alex, Jr.", "description": "This is Alex, thanks."},
			},
		},
		{
			name:     "leading whitespace on lines and fields",
			input:    " name,age\n \"Homer\", 39\n\"Lisa\", 10",
			coercion: CoercionRaw,
			want: []map[string]any{
				{"name": "Homer", "age": "39"},
				{"name": "Lisa", "age": "10"},
			},
		},
		{
			name:     "typed numbers",
			input:    "name,age,salary\nAlex,32,500000\nVova,25,75000.50\n\"Homer\",50,\"100,000\"",
			coercion: CoercionTyped,
			want: []map[string]any{
				{"name": "Alex", "age": 32.0, "salary": 500000.0},
				{"name": "Vova", "age": 25.0, "salary": 75000.5},
				{"name": "Homer", "age": 50.0, "salary": 100000.0},
			},
		},
		{
			name:    "missing columns",
			input:   "name,age\nAlex\nVova1",
			wantErr: true,
		},
		{
			name:    "more columns than headers",
			input:   "name,age\nAlex,32,Developer\nVova,25",
			wantErr: true,
		},
		{
			name:    "short row before valid row",
			input:   "name,age\nVova\nAlex,30",
			wantErr: true,
		},
		{
			name:  "single column",
			input: "name\nHomer\nAlex\nVova",
			want: []map[string]any{
				{"name": "Homer"},
				{"name": "Alex"},
				{"name": "Vova"},
			},
		},
		{
			name:  "blank rows are skipped",
			input: "a,b\n,\n\n1,2\n  \n",
			want: []map[string]any{
				{"a": "1", "b": "2"},
			},
		},
		{
			name:    "duplicate headers rejected",
			input:   "a,a\n1,2",
			wantErr: true,
		},
		{
			name:  "header only",
			input: "a,b,c\n",
			want:  []map[string]any{},
		},
		{
			name:     "escaped quotes keep typed field a string",
			input:    "code\n\"\"\"7\"\"\"",
			coercion: CoercionTyped,
			want: []map[string]any{
				{"code": "7"},
			},
		},
		{
			name: "non-ASCII headers and values",
			input: "id, Марка, Модель, Год выпуска, Цена, Описание\n" +
				"0, BMW, 3 Series, 2000, '500,000', Не на ходу\n" +
				"2, Toyota, tlc 200, 2016, '5,000,000', 'Проблем не обнаружено, есть мелкие \"косяки\" по лкп'",
			coercion: CoercionTyped,
			want: []map[string]any{
				{
					"id": 0.0, "Марка": "BMW", "Модель": "3 Series",
					"Год выпуска": 2000.0, "Цена": 500000.0, "Описание": "Не на ходу",
				},
				{
					"id": 2.0, "Марка": "Toyota", "Модель": "tlc 200",
					"Год выпуска": 2016.0, "Цена": 5000000.0,
					"Описание": "Проблем не обнаружено, есть мелкие \"косяки\" по лкп",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coercion := tt.coercion
			if coercion == "" {
				coercion = DefaultCoercion
			}
			records, err := Parse(tt.input, WithCoercion(coercion))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedInput) {
					t.Fatalf("Parse() error = %v, want ErrMalformedInput", err)
				}
				if records != nil {
					t.Errorf("Parse() returned %d records alongside error", len(records))
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() unexpected error: %v", err)
			}

			got := make([]map[string]any, len(records))
			for i, r := range records {
				got[i] = r.Map()
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n", " \t\n  \r\n"} {
		records, err := Parse(input)
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", input, err)
		}
		if records == nil || len(records) != 0 {
			t.Errorf("Parse(%q) = %v, want empty non-nil slice", input, records)
		}
	}
}

func TestParse_KeyOrderFollowsHeader(t *testing.T) {
	input := "zeta,alpha,mid\n1,2,3\n4,5,6"
	records, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"zeta", "alpha", "mid"}
	for i, r := range records {
		if !reflect.DeepEqual(r.Keys(), want) {
			t.Errorf("record %d keys = %v, want %v", i, r.Keys(), want)
		}
	}
}

func TestParse_RecordCountMatchesLines(t *testing.T) {
	input := "\nh1,h2\n\na,b\nc,d\n  e , f \n\n"
	records, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if want := len(SplitLines(input)) - 1; len(records) != want {
		t.Errorf("len(records) = %d, want %d", len(records), want)
	}
}

func TestParse_Idempotent(t *testing.T) {
	input := "name,age,salary\nAlex,32,\"1,500\"\nVova,25,x"
	p := NewParser(WithCoercion(CoercionTyped))

	first, err := p.Parse(input)
	if err != nil {
		t.Fatalf("first Parse() error = %v", err)
	}
	second, err := p.Parse(input)
	if err != nil {
		t.Fatalf("second Parse() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse() not idempotent: %v vs %v", first, second)
	}
}

func TestRecord_MarshalJSON(t *testing.T) {
	records, err := Parse("name,age,salary\nAlex,32,75000.50", WithCoercion(CoercionTyped))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	want := `[{"name":"Alex","age":32,"salary":75000.5}]`
	if string(got) != want {
		t.Errorf("json = %s, want %s", got, want)
	}
}

func TestNewRecord_RepeatedKey(t *testing.T) {
	r := NewRecord([]string{"a", "b", "a"}, []Value{StringValue("1"), StringValue("2"), StringValue("3")})

	if !reflect.DeepEqual(r.Keys(), []string{"a", "b"}) {
		t.Errorf("Keys() = %v, want [a b]", r.Keys())
	}
	if v, _ := r.Get("a"); v.String() != "3" {
		t.Errorf("Get(a) = %q, want %q", v.String(), "3")
	}
}

func TestHeaders(t *testing.T) {
	got := Headers("\n \"name\" , 'age'\n1,2")
	want := []string{"name", "age"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Headers() = %v, want %v", got, want)
	}
	if got := Headers("  "); got != nil {
		t.Errorf("Headers(blank) = %v, want nil", got)
	}
}
