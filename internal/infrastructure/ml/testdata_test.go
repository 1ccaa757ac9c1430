package ml

const logisticArtifact = `{
  "model": {
    "kind": "logistic",
    "intercept": -1.0,
    "numeric": [
      {"column": "n_operations", "coefficient": 0.5, "impute": 2, "mean": 2, "scale": 1}
    ],
    "categorical": [
      {"column": "credit_type_mode", "weights": {"CONSUMO": 1.0, "MICROCREDITO": 2.0}}
    ]
  },
  "threshold_proba": 0.4,
  "target_definition": "90+ days past due within 12 months"
}`

const forestArtifact = `{
  "model": {
    "kind": "forest",
    "impute": {"max_days_overdue": 0},
    "trees": [
      {"nodes": [
        {"feature": "n_operations", "threshold": 3, "left": 1, "right": 2},
        {"leaf": true, "value": 0.2},
        {"leaf": true, "value": 0.8}
      ]},
      {"nodes": [
        {"feature": "office_mode", "categories": ["MATRIZ"], "left": 1, "right": 2},
        {"leaf": true, "value": 0.1},
        {"leaf": true, "value": 0.5}
      ]}
    ]
  },
  "feature_columns": ["n_operations", "office_mode", "total_amount"]
}`
