package analysis

import (
	"reflect"
	"testing"
)

func TestProject_DropsIncompleteRowsAndNonNumericColumns(t *testing.T) {
	ds := parseCSV(t, "name,age,income,joined\nann,25,50000,2024-01-01\nbob,30,,2024-01-02\ncid,,70000,2024-01-03\ndan,40,80000,\n")
	p := Project(ds)
	if !reflect.DeepEqual(p.Names, []string{"age", "income"}) {
		t.Fatalf("Names = %v", p.Names)
	}
	if p.Rows() != 2 {
		t.Fatalf("Rows = %d, want 2", p.Rows())
	}
	if !reflect.DeepEqual(p.Column(0), []float64{25, 40}) || !reflect.DeepEqual(p.Column(1), []float64{50000, 80000}) {
		t.Errorf("columns = %v %v", p.Column(0), p.Column(1))
	}
	if ds.Rows() != 4 || ds.Columns[1].Missing[2] != true {
		t.Error("source dataset was modified")
	}
}

func TestProject_RowBound(t *testing.T) {
	inputs := []string{
		"a\n1\n2\n",
		"a,b\n1,\n,2\n",
		"t\nx\ny\n",
		scenarioAgeIncome,
		"a,b,c\n1,2,3\n4,5,6\n7,8,NA\n",
	}
	for _, in := range inputs {
		ds := parseCSV(t, in)
		p := Project(ds)
		if p.Rows() > ds.Rows() {
			t.Errorf("projection has %d rows, dataset %d", p.Rows(), ds.Rows())
		}
		for _, name := range p.Names {
			for _, c := range ds.Columns {
				if c.Name == name && !c.Kind.IsNumeric() {
					t.Errorf("non-numeric column %q retained", name)
				}
			}
		}
	}
}

func TestProject_NoNumericColumns(t *testing.T) {
	p := Project(parseCSV(t, "t,u\nx,y\n"))
	if !p.Empty() || p.Cols() != 0 || p.Rows() != 0 {
		t.Errorf("expected empty projection, got %dx%d", p.Rows(), p.Cols())
	}
	if !p.meansChart(5).IsEmpty() {
		t.Error("expected empty chart")
	}
}

func TestProject_Deterministic(t *testing.T) {
	ds := parseCSV(t, scenarioAgeIncome)
	if !reflect.DeepEqual(Project(ds).Matrix(), Project(ds).Matrix()) {
		t.Error("projection is not deterministic")
	}
}

func TestProjection_MeansChartLimit(t *testing.T) {
	ds := parseCSV(t, "a,b,c,d,e,f\n1,2,3,4,5,6\n3,4,5,6,7,8\n")
	chart := Project(ds).meansChart(5)
	if len(chart.Labels) != 5 || len(chart.Values) != 5 {
		t.Fatalf("chart = %+v", chart)
	}
	if chart.Labels[0] != "a" || chart.Values[0] != 2 || chart.Values[4] != 6 {
		t.Errorf("chart = %+v", chart)
	}
}
